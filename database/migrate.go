package database

import (
	"fmt"

	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm инициализирует GORM с URL из config.yaml
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	// TranslateError обязателен: уникальные ограничения (повторная заявка,
	// дубликат задачи выбора) должны приходить как gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.CreatorProfile{},
		&models.RoasterProfile{},
		&models.RoastRequest{},
		&models.RoastApplication{},
		&models.Feedback{},
		&models.SelectionTask{},
		&models.Upload{},
	)
}
