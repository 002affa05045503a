package dto

import "roastmyapp_backend/internal/models"

type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Role     models.UserRole `json:"role" validate:"required,oneof=creator roaster"`

	// Поля профиля создателя
	Company string `json:"company,omitempty"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`

	// Поля профиля ростера
	Specialties     []string `json:"specialties,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty" validate:"omitempty,oneof=junior middle senior"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	UserID       string          `json:"user_id"`
	Role         models.UserRole `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SwitchRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=creator roaster"`
}
