package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Username string  `json:"username"  validate:"required,min=3,max=60"`
	Password string  `json:"password"  validate:"required,min=8"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName string  `json:"full_name" validate:"required,min=2,max=120"`
	Role     string  `json:"role"      validate:"required,oneof=admin manager staff"`
}

type UpdateUserRequest struct {
	Password *string `json:"password"  validate:"omitempty,min=8"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Role     *string `json:"role"      validate:"omitempty,oneof=admin manager staff"`
}

type UserResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       *string `json:"email"`
	FullName    string  `json:"full_name"`
	Role        string  `json:"role"`
	Active      bool    `json:"active"`
	LastLoginAt *string `json:"last_login,omitempty"`
}
