package services

import (
	"context"
	"testing"
	"time"

	"taskboard/apperrors"
	"taskboard/models"
	"taskboard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProfileStore struct {
	profiles map[string]*models.User
	calls    int
}

func (f *fakeProfileStore) GetProfileByEmail(ctx context.Context, email string) (*models.User, error) {
	f.calls++
	profile, ok := f.profiles[email]
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "user not found")
	}
	return profile, nil
}

type fakeAuthStore struct {
	auths map[string]*models.AuthIdentity
	calls int
}

func (f *fakeAuthStore) GetAuthByEmail(ctx context.Context, email string) (*models.AuthIdentity, error) {
	f.calls++
	auth, ok := f.auths[email]
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "auth record not found")
	}
	return auth, nil
}

type fakeRevoker struct {
	revoked map[string]bool
}

func (f *fakeRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = make(map[string]bool)
	}
	f.revoked[token] = true
	return nil
}

func (f *fakeRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	return f.revoked[token], nil
}

func newTestSession(t *testing.T, password string) (*SessionService, *fakeProfileStore, *fakeAuthStore, *models.User) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	authID := primitive.NewObjectID()
	profile := &models.User{
		ID:     primitive.NewObjectID(),
		AuthID: authID,
		Email:  "ana@example.com",
		Name:   "Ana",
		Role:   models.RoleUser,
	}
	profiles := &fakeProfileStore{profiles: map[string]*models.User{profile.Email: profile}}
	auths := &fakeAuthStore{auths: map[string]*models.AuthIdentity{
		profile.Email: {ID: authID, Email: profile.Email, PasswordHash: hash},
	}}

	return NewSessionService(profiles, auths, &fakeRevoker{}), profiles, auths, profile
}

func TestLoginSuccess(t *testing.T) {
	sessions, _, _, profile := newTestSession(t, "Lozinka123!")

	identity, token, err := sessions.Login(context.Background(), "ana@example.com", "Lozinka123!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, profile.ID, identity.ID)
	assert.Equal(t, models.RoleUser, identity.Role)
	assert.False(t, identity.Degraded)
}

func TestLoginUnknownEmailSkipsCredentialCheck(t *testing.T) {
	sessions, _, auths, _ := newTestSession(t, "Lozinka123!")

	_, _, err := sessions.Login(context.Background(), "niko@example.com", "Lozinka123!")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	// Bez profila nema ni pokušaja provere kredencijala.
	assert.Equal(t, 0, auths.calls)
}

func TestLoginWrongPassword(t *testing.T) {
	sessions, _, _, _ := newTestSession(t, "Lozinka123!")

	identity, token, err := sessions.Login(context.Background(), "ana@example.com", "pogresna")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredentials, apperrors.KindOf(err))
	assert.Empty(t, token)
	assert.Equal(t, models.Identity{}, identity)
}

func TestLoginMissingAuthRecord(t *testing.T) {
	sessions, _, auths, _ := newTestSession(t, "Lozinka123!")
	delete(auths.auths, "ana@example.com")

	_, _, err := sessions.Login(context.Background(), "ana@example.com", "Lozinka123!")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredentials, apperrors.KindOf(err))
}

func TestLoginIdentityMismatch(t *testing.T) {
	sessions, profiles, _, _ := newTestSession(t, "Lozinka123!")
	// Profil pokazuje na tuđi auth zapis.
	profiles.profiles["ana@example.com"].AuthID = primitive.NewObjectID()

	_, _, err := sessions.Login(context.Background(), "ana@example.com", "Lozinka123!")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindIdentityMismatch, apperrors.KindOf(err))
}

func TestCurrentReturnsProfileIdentity(t *testing.T) {
	sessions, _, _, profile := newTestSession(t, "Lozinka123!")

	_, token, err := sessions.Login(context.Background(), "ana@example.com", "Lozinka123!")
	require.NoError(t, err)

	identity, err := sessions.Current(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, identity.ID)
	assert.Equal(t, "Ana", identity.Name)
	assert.False(t, identity.Degraded)
}

func TestCurrentDegradedWhenProfileMissing(t *testing.T) {
	sessions, profiles, _, _ := newTestSession(t, "Lozinka123!")

	_, token, err := sessions.Login(context.Background(), "ana@example.com", "Lozinka123!")
	require.NoError(t, err)

	// Profil nestaje između prijave i obnove sesije.
	delete(profiles.profiles, "ana@example.com")

	identity, err := sessions.Current(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, identity.Degraded)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, "ana", identity.Name)
	assert.Equal(t, models.RoleAdmin, identity.Role)
}

func TestCurrentRejectsGarbageToken(t *testing.T) {
	sessions, _, _, _ := newTestSession(t, "Lozinka123!")

	_, err := sessions.Current(context.Background(), "nije-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredentials, apperrors.KindOf(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	sessions, _, _, _ := newTestSession(t, "Lozinka123!")

	_, token, err := sessions.Login(context.Background(), "ana@example.com", "Lozinka123!")
	require.NoError(t, err)

	require.NoError(t, sessions.Logout(context.Background(), token))

	_, err = sessions.Current(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCredentials, apperrors.KindOf(err))
}
