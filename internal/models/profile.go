package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// CreatorProfile - профиль создателя, публикующего приложения на разбор.
type CreatorProfile struct {
	BaseModel
	UserID      string `gorm:"not null;uniqueIndex"`
	DisplayName string `gorm:"not null"`
	Company     string
	Website     string
	Bio         string `gorm:"type:text"`
}

// RoasterProfile - профиль ростера. Хранит только декларируемые атрибуты:
// рейтинг, заработок, completion rate и уровень всегда выводятся агрегацией
// по таблицам feedbacks/roast_applications, никогда не кэшируются здесь.
type RoasterProfile struct {
	BaseModel
	UserID          string         `gorm:"not null;uniqueIndex"`
	DisplayName     string         `gorm:"not null"`
	Headline        string
	Bio             string         `gorm:"type:text"`
	Specialties     datatypes.JSON `gorm:"type:jsonb"` // набор тегов: ux, onboarding, pricing...
	ExperienceLevel string         `gorm:"type:varchar(20);default:'junior'"` // junior | middle | senior
	IsPublic        bool           `gorm:"default:true"`
}

// GetSpecialties декодирует JSONB-набор специализаций в срез строк.
func (p *RoasterProfile) GetSpecialties() []string {
	var specialties []string
	if len(p.Specialties) > 0 {
		_ = json.Unmarshal(p.Specialties, &specialties)
	}
	return specialties
}

// RoasterStats - агрегированная статистика ростера, считается на лету.
type RoasterStats struct {
	RoasterID        string       `json:"roaster_id"`
	Rating           float64      `json:"rating"` // 0-5, среднее по creator_rating
	CompletedRoasts  int64        `json:"completed_roasts"`
	SelectedTotal    int64        `json:"selected_total"`
	CompletionRate   float64      `json:"completion_rate"` // 0-1
	TotalEarned      int64        `json:"total_earned"`    // cents
	Level            RoasterLevel `json:"level"`
}
