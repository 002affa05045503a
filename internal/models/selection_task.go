package models

import "time"

// SelectionTask - персистентная задача авто-выбора для одного запроса.
// Создается при переходе запроса в collecting_applications и потребляется
// фоновым воркером после наступления DueAt. ProcessedAt - флаг идемпотентности:
// обработанная задача никогда не обрабатывается повторно, а сам sweep
// дополнительно перечитывает статус запроса перед действием.
type SelectionTask struct {
	BaseModel
	RoastRequestID string     `gorm:"not null;uniqueIndex"`
	DueAt          time.Time  `gorm:"not null;index"`
	ProcessedAt    *time.Time `gorm:"index"`

	// Attempts считает неудачные попытки; сбой одной задачи не блокирует
	// обработку остальных.
	Attempts  int `gorm:"default:0"`
	LastError string
}
