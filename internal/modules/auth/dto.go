package auth

type RegisterRequest struct {
	FullName string `form:"fullName" json:"full_name" validate:"required,min=2"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Username string `form:"username" json:"username" validate:"required,min=3,max=30"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

// LoginRequest accepts either username or email; the handler rejects the
// request when both are empty.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty" binding:"omitempty,email"`
}

type UserResponse struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar_url"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	CreatedAt     string `json:"created_at"`
}
