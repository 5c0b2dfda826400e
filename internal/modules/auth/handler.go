package auth

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cliptube/internal/domain"
	"cliptube/internal/modules/media"
	"cliptube/internal/pkg/response"
	"cliptube/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// CookieConfig controls the attributes of the auth cookies. Set and clear
// always use the same path/samesite so the browser actually drops them.
type CookieConfig struct {
	Secure        bool
	SameSite      http.SameSite
	Path          string
	AccessMaxAge  int // seconds
	RefreshMaxAge int // seconds
}

func NewCookieConfig(secure bool, sameSite, path string, accessTTL, refreshTTL time.Duration) CookieConfig {
	ss := http.SameSiteLaxMode
	switch strings.ToLower(strings.TrimSpace(sameSite)) {
	case "none":
		ss = http.SameSiteNoneMode
	case "strict":
		ss = http.SameSiteStrictMode
	}
	return CookieConfig{
		Secure:        secure,
		SameSite:      ss,
		Path:          path,
		AccessMaxAge:  int(accessTTL.Seconds()),
		RefreshMaxAge: int(refreshTTL.Seconds()),
	}
}

// Handler manages all HTTP interactions for accounts and sessions
type Handler struct {
	service *Service
	cookies CookieConfig
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service, cookies CookieConfig) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	userGroup := v1.Group("/users")
	{
		userGroup.POST("/register", h.Register)
		userGroup.POST("/login", h.Login)
		userGroup.POST("/refresh-token", h.Refresh)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.POST("/logout", h.Logout)
		userGroup.GET("/me", h.GetMe)
		userGroup.PATCH("/me", h.UpdateProfile)
		userGroup.POST("/change-password", h.ChangePassword)
		userGroup.PATCH("/me/avatar", h.UpdateAvatar)
		userGroup.PATCH("/me/cover-image", h.UpdateCoverImage)
	}
}

// Register creates a new account from a multipart form: profile fields plus a
// required avatar file and an optional coverImage file.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "All fields are required", details)
		return
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "AVATAR_REQUIRED", "Avatar file is required")
		return
	}
	coverImage, _ := c.FormFile("coverImage") // optional

	user, err := h.service.Register(c.Request.Context(), req, avatar, coverImage)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			response.Error(c, http.StatusConflict, "USER_EXISTS", "User with email or username already exists")
		case errors.Is(err, media.ErrInvalidMimeType),
			errors.Is(err, media.ErrFileTooLarge),
			errors.Is(err, media.ErrEmptyFile):
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user_id": user.ID,
		"user":    toUserResponse(user),
	})
}

// Login authenticates by username or email and opens a session. Tokens are
// returned both as http-only cookies and in the body.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Username == "" && req.Email == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Username or email is required")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User does not exist")
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid user credentials")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	response.Success(c, http.StatusOK, gin.H{
		"user_id":       result.User.ID,
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

// Refresh rotates the token pair using the refresh token from the cookie or,
// failing that, the request body.
func (h *Handler) Refresh(c *gin.Context) {
	refreshRaw, _ := c.Cookie(refreshCookieName)
	if refreshRaw == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshRaw = req.RefreshToken
		}
	}
	if refreshRaw == "" {
		response.Error(c, http.StatusUnauthorized, "REFRESH_TOKEN_REQUIRED", "Refresh token is required")
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), refreshRaw)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	response.Success(c, http.StatusOK, gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetInt64("user_id")

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	h.clearAuthCookies(c)

	response.Success(c, http.StatusOK, gin.H{
		"message": "User logged out successfully",
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserResponse(user),
	})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserResponse(user),
	})
}

// ChangePassword verifies the old password before storing the new hash. The
// current session is revoked, so the client has to login again.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Old password is incorrect")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "PASSWORD_CHANGE_FAILED", "Failed to change password")
		}
		return
	}

	h.clearAuthCookies(c)

	response.Success(c, http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.service.UpdateAvatar)
}

func (h *Handler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.service.UpdateCoverImage)
}

func (h *Handler) updateImage(c *gin.Context, field string, update func(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*domain.User, error)) {
	userID := c.GetInt64("user_id")

	file, err := c.FormFile(field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "Image file is required")
		return
	}

	user, err := update(c.Request.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrInvalidMimeType),
			errors.Is(err, media.ErrFileTooLarge),
			errors.Is(err, media.ErrEmptyFile):
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update image")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": toUserResponse(user),
	})
}

func (h *Handler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie(accessCookieName, accessToken, h.cookies.AccessMaxAge, h.cookies.Path, "", h.cookies.Secure, true)
	c.SetCookie(refreshCookieName, refreshToken, h.cookies.RefreshMaxAge, h.cookies.Path, "", h.cookies.Secure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie(accessCookieName, "", -1, h.cookies.Path, "", h.cookies.Secure, true)
	c.SetCookie(refreshCookieName, "", -1, h.cookies.Path, "", h.cookies.Secure, true)
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt.Format("2006-01-02"),
	}
}
