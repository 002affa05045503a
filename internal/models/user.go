package models

import "time"

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Name         string     `gorm:"not null"`
	// ActiveRole - текущая роль в UI (creator/roaster). Пользователь может
	// иметь оба профиля и переключаться между ними.
	ActiveRole UserRole   `gorm:"type:varchar(20);not null"`
	Status     UserStatus `gorm:"type:varchar(20);default:'active'"`

	// Relations
	CreatorProfile *CreatorProfile `gorm:"foreignKey:UserID"`
	RoasterProfile *RoasterProfile `gorm:"foreignKey:UserID"`
	RefreshTokens  []RefreshToken  `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
