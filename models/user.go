package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

type Preferences struct {
	Theme         string `json:"theme" bson:"theme"`
	Notifications bool   `json:"notifications" bson:"notifications"`
	Sound         bool   `json:"sound" bson:"sound"`
	Language      string `json:"language" bson:"language"`
}

// User je profilni zapis, odvojen od auth identiteta (AuthIdentity).
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthID      primitive.ObjectID `bson:"authId,omitempty" json:"authId,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Email       string             `bson:"email" json:"email" validate:"required,email"`
	Role        UserRole           `bson:"role" json:"role"`
	Department  string             `bson:"department" json:"department"`
	Status      UserStatus         `bson:"status" json:"status"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Skills      []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	Preferences Preferences        `bson:"preferences" json:"preferences"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AuthIdentity je zapis u auth sloju; lozinka se čuva samo ovde, hešovana.
type AuthIdentity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Identity je trenutno prijavljeni korisnik; Degraded označava fallback
// identitet sintetizovan iz tokena kada profilni zapis ne postoji.
type Identity struct {
	ID       primitive.ObjectID `json:"id"`
	Email    string             `json:"email"`
	Name     string             `json:"name"`
	Role     UserRole           `json:"role"`
	Degraded bool               `json:"degraded,omitempty"`
}
