package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/metrics"
	"github.com/monocle-dev/rolodex/internal/services"
	"github.com/monocle-dev/rolodex/internal/types"
	"github.com/monocle-dev/rolodex/internal/utils"
	"github.com/monocle-dev/rolodex/internal/validation"
)

// AvatarField is the multipart field carrying the avatar image.
const AvatarField = "avatarFile"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" binding:"required,emailaddr"`
	Password string `json:"password" binding:"required,min=3,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,emailaddr"`
	Password string `json:"password" binding:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,emailaddr"`
}

type AuthHandler struct {
	auth *services.AuthService
	// tempDir stages uploads before they are moved into place.
	tempDir string
}

func NewAuthHandler(auth *services.AuthService, tempDir string) *AuthHandler {
	return &AuthHandler{auth: auth, tempDir: tempDir}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		_ = ctx.Error(err)
		return
	}

	user, err := h.auth.Register(ctx.Request.Context(), services.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	metrics.RecordAuthEvent(metrics.EventRegister)

	ctx.JSON(http.StatusCreated, types.UserResponse{
		Email: user.Email,
		Name:  user.Name,
	})
}

func (h *AuthHandler) VerifyEmail(ctx *gin.Context) {
	if err := h.auth.VerifyEmail(ctx.Request.Context(), ctx.Param("code")); err != nil {
		_ = ctx.Error(err)
		return
	}

	metrics.RecordAuthEvent(metrics.EventVerify)

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Verification successful"})
}

func (h *AuthHandler) ResendVerification(ctx *gin.Context) {
	var body ResendVerificationRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		_ = ctx.Error(err)
		return
	}

	if err := h.auth.ResendVerification(ctx.Request.Context(), body.Email); err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, types.MessageResponse{Message: "Verification email sent"})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		_ = ctx.Error(err)
		return
	}

	token, err := h.auth.Login(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		if appErr, ok := apperr.From(err); ok && appErr.Status == http.StatusUnauthorized {
			metrics.RecordAuthEvent(metrics.EventLoginFailure)
		}
		_ = ctx.Error(err)
		return
	}

	metrics.RecordAuthEvent(metrics.EventLoginSuccess)

	ctx.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func (h *AuthHandler) Current(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		_ = ctx.Error(apperr.Unauthorized(""))
		return
	}

	ctx.JSON(http.StatusOK, types.UserResponse{
		Email: currentUser.Email,
		Name:  currentUser.Name,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		_ = ctx.Error(apperr.Unauthorized(""))
		return
	}

	if err := h.auth.Logout(ctx.Request.Context(), userID); err != nil {
		_ = ctx.Error(err)
		return
	}

	metrics.RecordAuthEvent(metrics.EventLogout)

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Logout success"})
}

func (h *AuthHandler) ChangeAvatar(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		_ = ctx.Error(apperr.Unauthorized(""))
		return
	}

	file, err := ctx.FormFile(AvatarField)

	if err != nil {
		_ = ctx.Error(apperr.BadRequest(fmt.Sprintf("%q file is required", AvatarField)))
		return
	}

	name := services.StagedFileName(file.Filename)
	staged := filepath.Join(h.tempDir, uuid.NewString()+"_"+name)

	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		_ = ctx.Error(apperr.Internal(err))
		return
	}

	if err := ctx.SaveUploadedFile(file, staged); err != nil {
		_ = ctx.Error(apperr.Internal(fmt.Errorf("stage upload: %w", err)))
		return
	}

	avatarURL, err := h.auth.ChangeAvatar(ctx.Request.Context(), userID, staged, name)

	if err != nil {
		_ = os.Remove(staged)
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, types.AvatarResponse{AvatarURL: avatarURL})
}
