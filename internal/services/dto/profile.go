package dto

import "roastmyapp_backend/internal/models"

type UpdateCreatorProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=2,max=100"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

type UpdateRoasterProfileRequest struct {
	DisplayName     *string  `json:"display_name,omitempty" validate:"omitempty,min=2,max=100"`
	Headline        *string  `json:"headline,omitempty" validate:"omitempty,max=200"`
	Bio             *string  `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Specialties     []string `json:"specialties,omitempty" validate:"omitempty,max=15"`
	ExperienceLevel *string  `json:"experience_level,omitempty" validate:"omitempty,oneof=junior middle senior"`
	IsPublic        *bool    `json:"is_public,omitempty"`
}

type RoasterProfileResponse struct {
	UserID          string               `json:"user_id"`
	DisplayName     string               `json:"display_name"`
	Headline        string               `json:"headline,omitempty"`
	Bio             string               `json:"bio,omitempty"`
	Specialties     []string             `json:"specialties"`
	ExperienceLevel string               `json:"experience_level"`
	Stats           *models.RoasterStats `json:"stats,omitempty"`
}
