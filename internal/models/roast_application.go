package models

import "time"

// RoastApplication - заявка ростера на один слот запроса.
// Инвариант: не более одной активной заявки на пару (roaster, request) -
// продублирован уникальным индексом в БД. Терминальный статус неизменяем.
type RoastApplication struct {
	BaseModel
	RoastRequestID string `gorm:"not null;index;uniqueIndex:idx_app_roaster_request"`
	RoasterID      string `gorm:"not null;index;uniqueIndex:idx_app_roaster_request"`
	Motivation     *string
	Status         ApplicationStatus `gorm:"type:varchar(20);default:'pending';index"`

	// Score 0-100, вычисляется один раз при подаче заявки.
	Score        int            `gorm:"not null"`
	ScoreReasons string         `gorm:"type:text"` // человекочитаемое обоснование, через ";"

	// SelectedAt выставляется только при переходе в accepted/auto_selected.
	SelectedAt *time.Time

	// Relations
	RoastRequest *RoastRequest `gorm:"foreignKey:RoastRequestID"`
	Roaster      *User         `gorm:"foreignKey:RoasterID"`
}
