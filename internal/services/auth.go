package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/auth"
	"github.com/monocle-dev/rolodex/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgInvalidCredentials = "Email or password is wrong"
	msgNotAuthorized      = "Not authorized"
)

type AuthOptions struct {
	// BaseURL prefixes the verification link.
	BaseURL    string
	BcryptCost int
	// AvatarDir is the directory served under /avatars.
	AvatarDir string
}

type AuthService struct {
	db     *gorm.DB
	tokens *auth.TokenIssuer
	mailer Mailer
	log    logrus.FieldLogger
	opts   AuthOptions
}

func NewAuthService(db *gorm.DB, tokens *auth.TokenIssuer, mailer Mailer, log logrus.FieldLogger, opts AuthOptions) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{db: db, tokens: tokens, mailer: mailer, log: log, opts: opts}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified user and emails the verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	var existing models.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error

	if err == nil {
		return nil, emailInUse(email)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(fmt.Errorf("check existing user: %w", err))
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)

	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.BadRequest(`"password" must not exceed 72 bytes`)
	}

	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := models.User{
		Name:             strings.TrimSpace(in.Name),
		Email:            email,
		PasswordHash:     string(passwordHash),
		AvatarURL:        GravatarURL(email),
		VerificationCode: uuid.NewString(),
	}

	// The unique index is the real guard; a concurrent registration that
	// slipped past the check above lands here.
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, emailInUse(email)
		}
		return nil, storeError(err, "")
	}

	if err := s.mailer.Send(ctx, verificationEmail(user.Email, s.opts.BaseURL, user.VerificationCode)); err != nil {
		return nil, apperr.Internal(fmt.Errorf("send verification email: %w", err))
	}

	s.log.WithField("user_id", user.ID).Info("user registered")

	return &user, nil
}

// VerifyEmail redeems a verification code. A redeemed code is cleared, so a
// second attempt fails the same way an unknown code does.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) error {
	if code == "" {
		return apperr.Unauthorized("Verification code not found")
	}

	var user models.User

	err := s.db.WithContext(ctx).Where("verification_code = ?", code).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Unauthorized("Verification code not found")
	}

	if err != nil {
		return apperr.Internal(fmt.Errorf("find verification code: %w", err))
	}

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"verified":          true,
		"verification_code": "",
	}).Error

	return storeError(err, "")
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	var user models.User

	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Unauthorized("Email not found")
	}

	if err != nil {
		return apperr.Internal(fmt.Errorf("find user: %w", err))
	}

	if user.Verified {
		return apperr.Unauthorized("Verification has already been passed")
	}

	if err := s.mailer.Send(ctx, verificationEmail(user.Email, s.opts.BaseURL, user.VerificationCode)); err != nil {
		return apperr.Internal(fmt.Errorf("send verification email: %w", err))
	}

	return nil
}

// Login issues a session token and stores it on the user, replacing any
// earlier one. Unknown email, unverified account and wrong password all fail
// with the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Unauthorized(msgInvalidCredentials)
	}

	if err != nil {
		return "", apperr.Internal(fmt.Errorf("find user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Unauthorized(msgInvalidCredentials)
	}

	if !user.Verified {
		return "", apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID)

	if err != nil {
		return "", apperr.Internal(err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("token", token).Error; err != nil {
		return "", storeError(err, "")
	}

	return token, nil
}

// Authenticate resolves an Authorization header value to the user holding
// that exact session token.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*models.User, error) {
	scheme, token, ok := strings.Cut(header, " ")

	if !ok || scheme != "Bearer" || token == "" {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}

	userID, err := s.tokens.Verify(token)

	if err != nil {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}

	var user models.User

	err = s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}

	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find user: %w", err))
	}

	// Logout or a later login replaced the stored token.
	if user.Token == "" || user.Token != token {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}

	return &user, nil
}

// Logout clears the stored session token. Clearing an empty token succeeds.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("token", "").Error
	return storeError(err, "")
}

// ChangeAvatar moves a staged upload into the avatar directory as
// {userID}_{name} and records the public relative path.
func (s *AuthService) ChangeAvatar(ctx context.Context, userID uuid.UUID, stagedPath, originalName string) (string, error) {
	fileName := fmt.Sprintf("%s_%s", userID, filepath.Base(originalName))

	if err := os.MkdirAll(s.opts.AvatarDir, 0o755); err != nil {
		return "", apperr.Internal(fmt.Errorf("create avatar dir: %w", err))
	}

	if err := os.Rename(stagedPath, filepath.Join(s.opts.AvatarDir, fileName)); err != nil {
		return "", apperr.Internal(fmt.Errorf("move avatar: %w", err))
	}

	avatarURL := path.Join("avatars", fileName)

	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", avatarURL).Error

	if err != nil {
		return "", storeError(err, "")
	}

	return avatarURL, nil
}

// GravatarURL is the default avatar for an email address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=200&d=robohash", hex.EncodeToString(sum[:]))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailInUse(email string) error {
	return apperr.Conflict(fmt.Sprintf("Email %s already in use", email))
}
