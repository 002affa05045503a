package dto

import (
	"time"

	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/pricing"
)

type CreateRequestRequest struct {
	Title              string              `json:"title" validate:"required,min=3,max=200"`
	Description        string              `json:"description" validate:"required,min=10"`
	AppURL             string              `json:"app_url" validate:"required,url"`
	FocusAreas         []string            `json:"focus_areas" validate:"max=10"`
	FeedbackMode       models.FeedbackMode `json:"feedback_mode" validate:"required,feedback_mode"`
	Questions          []string            `json:"questions" validate:"max=20"`
	FeedbacksRequested int                 `json:"feedbacks_requested" validate:"required,min=1,max=10"`
	IsUrgent           bool                `json:"is_urgent"`
}

type UpdateRequestRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=10"`
	AppURL      *string  `json:"app_url,omitempty" validate:"omitempty,url"`
	FocusAreas  []string `json:"focus_areas,omitempty" validate:"omitempty,max=10"`
}

type SearchRequestsRequest struct {
	Query        string `form:"q"`
	Status       string `form:"status" validate:"omitempty,request_status"`
	FeedbackMode string `form:"mode" validate:"omitempty,feedback_mode"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type RequestResponse struct {
	ID                 string               `json:"id"`
	CreatorID          string               `json:"creator_id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	AppURL             string               `json:"app_url"`
	FocusAreas         []string             `json:"focus_areas"`
	FeedbackMode       models.FeedbackMode  `json:"feedback_mode"`
	Questions          []string             `json:"questions,omitempty"`
	FeedbacksRequested int                  `json:"feedbacks_requested"`
	SlotsRemaining     int                  `json:"slots_remaining"`
	IsUrgent           bool                 `json:"is_urgent"`
	PricePerRoaster    int                  `json:"price_per_roaster"`
	TotalPrice         int                  `json:"total_price"`
	Status             models.RequestStatus `json:"status"`
	SelectionDeadline  *time.Time           `json:"selection_deadline,omitempty"`
	Views              int                  `json:"views"`
	CreatedAt          time.Time            `json:"created_at"`

	// Только для владельца
	Applications []ApplicationSummary `json:"applications,omitempty"`
	Pricing      *pricing.Breakdown   `json:"pricing,omitempty"`
}
