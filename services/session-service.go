package services

import (
	"context"
	"strings"
	"time"

	"taskboard/apperrors"
	"taskboard/logging"
	"taskboard/models"
	"taskboard/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileStore vraća profilni zapis korisnika.
type ProfileStore interface {
	GetProfileByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthStore vraća auth identitet (zapis sa hešovanom lozinkom).
type AuthStore interface {
	GetAuthByEmail(ctx context.Context, email string) (*models.AuthIdentity, error)
}

// TokenRevoker je lista povučenih tokena (Redis u produkciji).
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// SessionService upravlja prijavom, odjavom i obnavljanjem sesije.
// Identitet se izvodi iz tokena po zahtevu; nema ambijentalnog globalnog stanja.
type SessionService struct {
	Profiles ProfileStore
	Auths    AuthStore
	Revoked  TokenRevoker
}

func NewSessionService(profiles ProfileStore, auths AuthStore, revoked TokenRevoker) *SessionService {
	return &SessionService{
		Profiles: profiles,
		Auths:    auths,
		Revoked:  revoked,
	}
}

// Login zahteva postojeći profilni zapis pre bilo kakve provere kredencijala.
func (s *SessionService) Login(ctx context.Context, email, password string) (models.Identity, string, error) {
	profile, err := s.Profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return models.Identity{}, "", apperrors.E(apperrors.KindNotFound, "no profile record for this email")
		}
		return models.Identity{}, "", err
	}

	auth, err := s.Auths.GetAuthByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return models.Identity{}, "", apperrors.E(apperrors.KindInvalidCredentials, "invalid login credentials")
		}
		return models.Identity{}, "", err
	}

	if !utils.CheckPassword(auth.PasswordHash, password) {
		return models.Identity{}, "", apperrors.E(apperrors.KindInvalidCredentials, "invalid login credentials")
	}

	// Odbrambena provera: auth identitet mora da pokazuje na isti profil.
	if profile.AuthID != auth.ID {
		logging.Logger.Warnf("Event ID: IDENTITY_MISMATCH, Description: Auth id %s does not match profile auth id %s for %s", auth.ID.Hex(), profile.AuthID.Hex(), email)
		return models.Identity{}, "", apperrors.E(apperrors.KindIdentityMismatch, "authenticated account does not match profile record")
	}

	token, err := utils.GenerateToken(profile.ID.Hex(), profile.Email, string(profile.Role))
	if err != nil {
		return models.Identity{}, "", apperrors.Wrap(apperrors.KindInternal, "failed to generate token", err)
	}

	identity := models.Identity{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User %s logged in", email)
	return identity, token, nil
}

// Current obnavlja identitet iz tokena. Ako profilni zapis ne postoji,
// vraća degradirani identitet sintetizovan iz claim-ova (nasleđeno ponašanje:
// bolje išta nego blokirati korisnika).
func (s *SessionService) Current(ctx context.Context, token string) (models.Identity, error) {
	revoked, err := s.Revoked.IsRevoked(ctx, token)
	if err != nil {
		return models.Identity{}, apperrors.Wrap(apperrors.KindUnavailable, "revocation check failed", err)
	}
	if revoked {
		return models.Identity{}, apperrors.E(apperrors.KindInvalidCredentials, "session revoked")
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return models.Identity{}, apperrors.Wrap(apperrors.KindInvalidCredentials, "invalid session token", err)
	}

	profile, err := s.Profiles.GetProfileByEmail(ctx, claims.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			logging.Logger.Warnf("Event ID: SESSION_DEGRADED, Description: No profile record for %s, using token-derived identity", claims.Email)
			return degradedIdentity(claims), nil
		}
		return models.Identity{}, err
	}

	return models.Identity{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	}, nil
}

// Logout povlači token do njegovog isteka.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInvalidCredentials, "invalid session token", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.Revoked.Revoke(ctx, token, ttl); err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "failed to revoke token", err)
	}

	logging.Logger.Infof("Event ID: USER_LOGOUT, Description: User %s logged out", claims.Email)
	return nil
}

func degradedIdentity(claims *utils.Claims) models.Identity {
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		id = primitive.NilObjectID
	}

	name := claims.Email
	if at := strings.Index(claims.Email, "@"); at > 0 {
		name = claims.Email[:at]
	}

	return models.Identity{
		ID:       id,
		Email:    claims.Email,
		Name:     name,
		Role:     models.RoleAdmin,
		Degraded: true,
	}
}
