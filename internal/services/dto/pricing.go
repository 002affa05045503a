package dto

type PricingQuoteRequest struct {
	FeedbackMode  string `form:"mode" json:"mode" validate:"required,feedback_mode"`
	QuestionCount int    `form:"questions" json:"questions" validate:"min=0"`
	RoasterCount  int    `form:"roasters" json:"roasters" validate:"required,min=1,max=10"`
	IsUrgent      bool   `form:"urgent" json:"urgent"`
}
