package services

import (
	"context"
	"html"
	"time"

	"taskboard/apperrors"
	"taskboard/logging"
	"taskboard/models"
	"taskboard/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateUserRequest je payload privilegovanog kreiranja korisnika.
type CreateUserRequest struct {
	Name       string          `json:"name" validate:"required"`
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required"`
	Role       models.UserRole `json:"role" validate:"required"`
	Department string          `json:"department" validate:"required"`
	Phone      string          `json:"phone,omitempty"`
	Location   string          `json:"location,omitempty"`
	Bio        string          `json:"bio,omitempty"`
	Skills     []string        `json:"skills,omitempty"`
}

type UserService struct {
	UserCollection *mongo.Collection
	AuthCollection *mongo.Collection
	Validate       *validator.Validate
	BlackList      map[string]bool
	// Rezervisani admin nalog zaštićen od degradacije, deaktivacije i brisanja.
	PrimaryAdminEmail string
}

func NewUserService(userCollection, authCollection *mongo.Collection, blackList map[string]bool, primaryAdminEmail string) *UserService {
	return &UserService{
		UserCollection:    userCollection,
		AuthCollection:    authCollection,
		Validate:          validator.New(),
		BlackList:         blackList,
		PrimaryAdminEmail: primaryAdminEmail,
	}
}

func (s *UserService) GetProfileByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.E(apperrors.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch user", err)
	}
	return &user, nil
}

func (s *UserService) GetAuthByEmail(ctx context.Context, email string) (*models.AuthIdentity, error) {
	var auth models.AuthIdentity
	err := s.AuthCollection.FindOne(ctx, bson.M{"email": email}).Decode(&auth)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.E(apperrors.KindNotFound, "auth identity not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch auth identity", err)
	}
	return &auth, nil
}

// CreateUserWithIdentity kreira auth identitet pa profilni zapis. Ako upis
// profila ne uspe, kompenzaciono briše upravo kreirani identitet da ne
// ostane auth nalog bez profila.
func (s *UserService) CreateUserWithIdentity(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "invalid user data", err)
	}
	if !req.Role.Valid() {
		return nil, apperrors.E(apperrors.KindInvalidInput, "role must be user or admin")
	}
	if err := utils.ValidatePassword(req.Password, s.BlackList); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "weak password", err)
	}

	if _, err := s.GetProfileByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.E(apperrors.KindDuplicateEmail, "user with this email already exists")
	} else if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to hash password", err)
	}

	auth := models.AuthIdentity{
		ID:           primitive.NewObjectID(),
		Email:        req.Email,
		PasswordHash: hashed,
		CreatedAt:    time.Now(),
	}
	if _, err := s.AuthCollection.InsertOne(ctx, auth); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create auth identity", err)
	}

	now := time.Now()
	user := models.User{
		ID:         primitive.NewObjectID(),
		AuthID:     auth.ID,
		Name:       html.EscapeString(req.Name),
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Status:     models.UserActive,
		Phone:      req.Phone,
		Location:   req.Location,
		Bio:        html.EscapeString(req.Bio),
		Skills:     req.Skills,
		Preferences: models.Preferences{
			Theme:         "light",
			Notifications: true,
			Sound:         true,
			Language:      "en",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		// Kompenzaciona akcija: ukloni auth identitet pre prijave greške.
		if _, delErr := s.AuthCollection.DeleteOne(ctx, bson.M{"_id": auth.ID}); delErr != nil {
			logging.Logger.Errorf("Event ID: AUTH_COMPENSATION_FAILED, Description: Failed to delete orphaned auth identity %s: %v", auth.ID.Hex(), delErr)
		} else {
			logging.Logger.Warnf("Event ID: AUTH_COMPENSATED, Description: Deleted auth identity %s after profile insert failure", auth.ID.Hex())
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create user profile", err)
	}

	logging.Logger.Infof("Event ID: USER_CREATED, Description: Created user %s (%s)", user.Email, user.Role)
	return &user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.UserCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to parse users", err)
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.E(apperrors.KindInvalidInput, "invalid user ID format")
	}

	var user models.User
	err = s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.E(apperrors.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch user", err)
	}
	return &user, nil
}

// UpdateUser menja rolu/status/podatke profila uz zaštitu primarnog admina.
func (s *UserService) UpdateUser(ctx context.Context, id string, fields bson.M) (*models.User, error) {
	// Polja stižu kao sirovi JSON; rola i status moraju biti stringovi sa
	// poznatom vrednošću pre bilo kakvog upisa.
	if raw, ok := fields["role"]; ok {
		role, isString := raw.(string)
		if !isString || !models.UserRole(role).Valid() {
			return nil, apperrors.E(apperrors.KindInvalidInput, "role must be user or admin")
		}
	}
	if raw, ok := fields["status"]; ok {
		status, isString := raw.(string)
		if !isString || !models.UserStatus(status).Valid() {
			return nil, apperrors.E(apperrors.KindInvalidInput, "status must be active or inactive")
		}
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Email == s.PrimaryAdminEmail {
		if role, ok := fields["role"]; ok && role != string(models.RoleAdmin) {
			return nil, apperrors.E(apperrors.KindPermissionDenied, "primary admin role cannot be changed")
		}
		if status, ok := fields["status"]; ok && status != string(models.UserActive) {
			return nil, apperrors.E(apperrors.KindPermissionDenied, "primary admin cannot be deactivated")
		}
	}

	fields["updatedAt"] = time.Now()
	res, err := s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": fields})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update user", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.E(apperrors.KindNotFound, "user not found for update")
	}

	return s.GetUserByID(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Email == s.PrimaryAdminEmail {
		return apperrors.E(apperrors.KindPermissionDenied, "primary admin cannot be deleted")
	}

	if _, err := s.UserCollection.DeleteOne(ctx, bson.M{"_id": user.ID}); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete user", err)
	}
	// Auth identitet ide zajedno sa profilom.
	if _, err := s.AuthCollection.DeleteOne(ctx, bson.M{"_id": user.AuthID}); err != nil {
		logging.Logger.Errorf("Event ID: AUTH_DELETE_FAILED, Description: Failed to delete auth identity for user %s: %v", user.Email, err)
	}

	logging.Logger.Infof("Event ID: USER_DELETED, Description: Deleted user %s", user.Email)
	return nil
}

// ChangePassword menja lozinku korisniku.
func (s *UserService) ChangePassword(ctx context.Context, email, oldPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return apperrors.E(apperrors.KindInvalidInput, "new password and confirmation do not match")
	}

	auth, err := s.GetAuthByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(auth.PasswordHash, oldPassword) {
		return apperrors.E(apperrors.KindInvalidCredentials, "old password is incorrect")
	}

	if err := utils.ValidatePassword(newPassword, s.BlackList); err != nil {
		return apperrors.Wrap(apperrors.KindInvalidInput, "weak password", err)
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to hash new password", err)
	}

	_, err = s.AuthCollection.UpdateOne(ctx, bson.M{"_id": auth.ID}, bson.M{"$set": bson.M{"passwordHash": hashed}})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to update password", err)
	}

	return nil
}
