package dto

import (
	"time"

	"roastmyapp_backend/internal/models"
)

type SubmitFeedbackRequest struct {
	Content string `json:"content" validate:"required,min=50"`
}

type RateFeedbackRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type FeedbackResponse struct {
	ID             string                `json:"id"`
	RoastRequestID string                `json:"roast_request_id"`
	RoasterID      string                `json:"roaster_id"`
	Status         models.FeedbackStatus `json:"status"`
	Content        string                `json:"content,omitempty"`
	FinalPrice     int                   `json:"final_price"`
	CreatorRating  *int                  `json:"creator_rating,omitempty"`
	SubmittedAt    *time.Time            `json:"submitted_at,omitempty"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}
