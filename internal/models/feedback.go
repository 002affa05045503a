package models

import "time"

// Feedback - результат работы выбранного ростера по запросу.
// Создается в статусе draft при принятии заявки (ручном или автоматическом).
// Жизненный цикл: draft -> pending -> completed. После completed запись
// неизменяема, кроме однократной оценки создателем.
type Feedback struct {
	BaseModel
	RoastRequestID string `gorm:"not null;index"`
	ApplicationID  string `gorm:"not null;uniqueIndex"`
	RoasterID      string `gorm:"not null;index"`

	Status  FeedbackStatus `gorm:"type:varchar(20);default:'draft';index"`
	Content string         `gorm:"type:text"`

	// FinalPrice фиксируется из price_per_roaster запроса на момент выбора (в центах).
	FinalPrice int `gorm:"not null"`

	// CreatorRating 1-5, выставляется создателем один раз после завершения.
	CreatorRating *int
	RatedAt       *time.Time
	SubmittedAt   *time.Time
	CompletedAt   *time.Time

	// Relations
	RoastRequest *RoastRequest     `gorm:"foreignKey:RoastRequestID"`
	Application  *RoastApplication `gorm:"foreignKey:ApplicationID"`
	Roaster      *User             `gorm:"foreignKey:RoasterID"`
}
