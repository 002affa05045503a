package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RoastRequest - запрос создателя на разбор приложения.
// Инвариант: число заявок в статусах accepted/auto_selected никогда
// не превышает FeedbacksRequested. Все проверки и изменения занятости
// слотов выполняются в транзакции с блокировкой строки запроса.
type RoastRequest struct {
	BaseModel
	CreatorID   string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	AppURL      string `gorm:"not null"`
	FocusAreas  datatypes.JSON `gorm:"type:jsonb"` // теги: ux, onboarding, pricing...

	FeedbackMode       FeedbackMode   `gorm:"type:varchar(20);not null"`
	Questions          datatypes.JSON `gorm:"type:jsonb"` // вопросы для targeted/structured
	FeedbacksRequested int            `gorm:"not null"`
	IsUrgent           bool           `gorm:"default:false"`

	// Цены зафиксированы при создании из прайс-таблицы (в центах).
	PricePerRoaster int `gorm:"not null"`
	TotalPrice      int `gorm:"not null"`

	Status RequestStatus `gorm:"type:varchar(32);default:'open';index"`

	// SelectionDeadline выставляется первой заявкой: submission time + окно.
	SelectionDeadline *time.Time

	CoverImageID *string
	Views        int `gorm:"default:0"`

	// Relations
	Creator      *User              `gorm:"foreignKey:CreatorID"`
	Applications []RoastApplication `gorm:"foreignKey:RoastRequestID;constraint:OnDelete:CASCADE"`
}

// GetFocusAreas декодирует JSONB-набор фокус-зон в срез строк.
func (r *RoastRequest) GetFocusAreas() []string {
	var areas []string
	if len(r.FocusAreas) > 0 {
		_ = json.Unmarshal(r.FocusAreas, &areas)
	}
	return areas
}

// GetQuestions декодирует список вопросов запроса.
func (r *RoastRequest) GetQuestions() []string {
	var questions []string
	if len(r.Questions) > 0 {
		_ = json.Unmarshal(r.Questions, &questions)
	}
	return questions
}
