package services_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/auth"
	"github.com/monocle-dev/rolodex/internal/models"
	"github.com/monocle-dev/rolodex/internal/services"
	"github.com/monocle-dev/rolodex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authFixture struct {
	svc       *services.AuthService
	db        *gorm.DB
	mailer    *testutil.Mailer
	avatarDir string
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	gdb := testutil.NewDB(t)
	mailer := &testutil.Mailer{}
	avatarDir := filepath.Join(t.TempDir(), "public", "avatars")

	svc := services.NewAuthService(gdb, auth.NewTokenIssuer("test-secret", 23*time.Hour), mailer, testutil.QuietLogger(), services.AuthOptions{
		BaseURL:    "http://localhost:3000",
		BcryptCost: bcrypt.MinCost,
		AvatarDir:  avatarDir,
	})

	return authFixture{svc: svc, db: gdb, mailer: mailer, avatarDir: avatarDir}
}

func (f authFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()

	user, err := f.svc.Register(context.Background(), services.RegisterInput{Name: "andrii", Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func (f authFixture) registerVerified(t *testing.T, email, password string) *models.User {
	t.Helper()

	user := f.register(t, email, password)
	require.NoError(t, f.svc.VerifyEmail(context.Background(), user.VerificationCode))
	return user
}

func (f authFixture) reload(t *testing.T, id uuid.UUID) models.User {
	t.Helper()

	var user models.User
	require.NoError(t, f.db.First(&user, "id = ?", id).Error)
	return user
}

func requireStatus(t *testing.T, err error, status int) *apperr.Error {
	t.Helper()

	require.Error(t, err)
	appErr, ok := apperr.From(err)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, status, appErr.Status)
	return appErr
}

func TestRegister_CreatesUnverifiedUser(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "andrii@x.co.uk", "andrii")

	stored := f.reload(t, user.ID)
	assert.Equal(t, "andrii", stored.Name)
	assert.Equal(t, "andrii@x.co.uk", stored.Email)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "andrii", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("andrii")))
	assert.False(t, stored.Verified)
	assert.Empty(t, stored.Token)
	assert.NotEmpty(t, stored.VerificationCode)
	assert.Equal(t, services.GravatarURL("andrii@x.co.uk"), stored.AvatarURL)

	email, ok := f.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "andrii@x.co.uk", email.To)
	assert.Contains(t, email.HTML, "http://localhost:3000/api/auth/verify/"+stored.VerificationCode)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "  Andrii@X.co.uk ", "andrii")
	assert.Equal(t, "andrii@x.co.uk", user.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	first := f.register(t, "andrii@x.co.uk", "andrii")

	_, err := f.svc.Register(context.Background(), services.RegisterInput{Name: "other", Email: "andrii@x.co.uk", Password: "other"})
	appErr := requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, "Email andrii@x.co.uk already in use", appErr.Message)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Where("email = ?", "andrii@x.co.uk").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored := f.reload(t, first.ID)
	assert.Equal(t, "andrii", stored.Name)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
}

func TestRegister_PasswordTooLongForBcrypt(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), services.RegisterInput{Name: "andrii", Email: "a@b.co", Password: strings.Repeat("p", 100)})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestRegister_MailerFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.Err = errors.New("provider down")

	_, err := f.svc.Register(context.Background(), services.RegisterInput{Name: "andrii", Email: "a@b.co", Password: "andrii"})
	requireStatus(t, err, http.StatusInternalServerError)

	// The account stays; the user can ask for the email again.
	f.mailer.Err = nil
	require.NoError(t, f.svc.ResendVerification(context.Background(), "a@b.co"))
}

func TestVerifyEmail_RedeemsOnce(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "a@b.co", "andrii")

	require.NoError(t, f.svc.VerifyEmail(context.Background(), user.VerificationCode))

	stored := f.reload(t, user.ID)
	assert.True(t, stored.Verified)
	assert.Empty(t, stored.VerificationCode)

	err := f.svc.VerifyEmail(context.Background(), user.VerificationCode)
	appErr := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Verification code not found", appErr.Message)
}

func TestVerifyEmail_EmptyCode(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@b.co", "andrii")

	// Verified users have an empty code; it must not match them.
	requireStatus(t, f.svc.VerifyEmail(context.Background(), ""), http.StatusUnauthorized)
}

func TestResendVerification(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.ResendVerification(context.Background(), "nobody@b.co")
	assert.Equal(t, "Email not found", requireStatus(t, err, http.StatusUnauthorized).Message)

	user := f.register(t, "a@b.co", "andrii")
	sentBefore := len(f.mailer.Sent)

	require.NoError(t, f.svc.ResendVerification(context.Background(), "a@b.co"))
	require.Len(t, f.mailer.Sent, sentBefore+1)
	email, _ := f.mailer.Last()
	assert.Contains(t, email.HTML, user.VerificationCode)

	require.NoError(t, f.svc.VerifyEmail(context.Background(), user.VerificationCode))

	err = f.svc.ResendVerification(context.Background(), "a@b.co")
	assert.Equal(t, "Verification has already been passed", requireStatus(t, err, http.StatusUnauthorized).Message)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "a@b.co", "andrii")

	token, err := f.svc.Login(context.Background(), "a@b.co", "andrii")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.Equal(t, token, f.reload(t, user.ID).Token)
}

func TestLogin_FailuresShareMessage(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "verified@b.co", "andrii")
	f.register(t, "pending@b.co", "andrii")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@b.co", "andrii"},
		{"wrong password", "verified@b.co", "wrong"},
		{"unverified", "pending@b.co", "andrii"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.email, tt.password)
			appErr := requireStatus(t, err, http.StatusUnauthorized)
			assert.Equal(t, "Email or password is wrong", appErr.Message)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "a@b.co", "andrii")

	token, err := f.svc.Login(context.Background(), "a@b.co", "andrii")
	require.NoError(t, err)

	got, err := f.svc.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic " + token, token, "Bearer garbage"} {
		_, err := f.svc.Authenticate(context.Background(), header)
		requireStatus(t, err, http.StatusUnauthorized)
	}
}

func TestAuthenticate_SupersededToken(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@b.co", "andrii")

	first, err := f.svc.Login(context.Background(), "a@b.co", "andrii")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "a@b.co", "andrii")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), "Bearer "+first)
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = f.svc.Authenticate(context.Background(), "Bearer "+second)
	require.NoError(t, err)
}

func TestAuthenticate_ForeignSignature(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "a@b.co", "andrii")

	forged, err := auth.NewTokenIssuer("other-secret", time.Hour).Generate(user.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("token", forged).Error)

	_, err = f.svc.Authenticate(context.Background(), "Bearer "+forged)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogout_ClearsTokenIdempotently(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerVerified(t, "a@b.co", "andrii")

	token, err := f.svc.Login(context.Background(), "a@b.co", "andrii")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), user.ID))
	assert.Empty(t, f.reload(t, user.ID).Token)
	require.NoError(t, f.svc.Logout(context.Background(), user.ID))

	_, err = f.svc.Authenticate(context.Background(), "Bearer "+token)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestChangeAvatar_MovesFile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "a@b.co", "andrii")

	staged := filepath.Join(t.TempDir(), "staged-me.png")
	require.NoError(t, os.WriteFile(staged, []byte("png"), 0o644))

	avatarURL, err := f.svc.ChangeAvatar(context.Background(), user.ID, staged, "me.png")
	require.NoError(t, err)

	wantName := user.ID.String() + "_me.png"
	assert.Equal(t, "avatars/"+wantName, avatarURL)
	assert.Equal(t, avatarURL, f.reload(t, user.ID).AvatarURL)

	content, err := os.ReadFile(filepath.Join(f.avatarDir, wantName))
	require.NoError(t, err)
	assert.Equal(t, "png", string(content))

	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}

func TestChangeAvatar_MissingStagedFile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "a@b.co", "andrii")

	_, err := f.svc.ChangeAvatar(context.Background(), user.ID, filepath.Join(t.TempDir(), "gone.png"), "gone.png")
	requireStatus(t, err, http.StatusInternalServerError)

	assert.Equal(t, services.GravatarURL("a@b.co"), f.reload(t, user.ID).AvatarURL)
}

func TestGravatarURL(t *testing.T) {
	url := services.GravatarURL(" Andrii@X.co.uk ")
	assert.True(t, strings.HasPrefix(url, "https://www.gravatar.com/avatar/"))
	assert.True(t, strings.HasSuffix(url, "?s=200&d=robohash"))
	assert.Equal(t, services.GravatarURL("andrii@x.co.uk"), url)
}
