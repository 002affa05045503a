package dto

import (
	"time"

	"roastmyapp_backend/internal/models"
)

type ApplyRequest struct {
	Motivation *string `json:"motivation,omitempty" validate:"omitempty,max=2000"`
}

type ApplicationSummary struct {
	ID          string                   `json:"id"`
	RoasterID   string                   `json:"roaster_id"`
	RoasterName string                   `json:"roaster_name,omitempty"`
	Motivation  *string                  `json:"motivation,omitempty"`
	Status      models.ApplicationStatus `json:"status"`
	Score       int                      `json:"score"`
	Reasons     []string                 `json:"reasons,omitempty"`
	SelectedAt  *time.Time               `json:"selected_at,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}
