package services

import (
	"encoding/json"
	"testing"

	"roastmyapp_backend/database"
	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestConfig подменяет глобальный конфиг на детерминированную
// тестовую прайс-таблицу и веса.
func setupTestConfig() {
	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.Upload.MaxSize = 10 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png"}
	cfg.Pricing = config.PricingConfig{
		Free:             config.PricingModeConfig{},
		Targeted:         config.PricingModeConfig{BasePrice: 500, FreeQuestions: 3, QuestionPrice: 100, MaxQuestions: 10},
		Structured:       config.PricingModeConfig{BasePrice: 1500, FreeQuestions: 5, QuestionPrice: 200, MaxQuestions: 20},
		UrgencySurcharge: 500,
	}
	cfg.Scoring = config.ScoringConfig{
		FocusMatchWeight:     35,
		ExperienceWeight:     15,
		RatingWeight:         20,
		LevelWeight:          15,
		CompletionRateWeight: 15,
	}
	cfg.Selection = config.SelectionConfig{WindowHours: 24, SweepCron: "*/5 * * * *"}
	config.AppConfig = cfg
}

// openTestDB открывает sqlite в памяти и прогоняет те же миграции,
// что и боевое приложение. TranslateError обязателен: логика дубликатов
// завязана на gorm.ErrDuplicatedKey.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	setupTestConfig()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func mustJSON(t *testing.T, tags []string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(tags)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test " + email,
		ActiveRole:   role,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestCreator(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := createTestUser(t, db, email, models.UserRoleCreator)
	profile := &models.CreatorProfile{UserID: user.ID, DisplayName: user.Name}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create creator profile: %v", err)
	}
	return user
}

func createTestRoaster(t *testing.T, db *gorm.DB, email string, specialties []string, experience string) *models.User {
	t.Helper()
	user := createTestUser(t, db, email, models.UserRoleRoaster)
	profile := &models.RoasterProfile{
		UserID:          user.ID,
		DisplayName:     user.Name,
		Specialties:     mustJSON(t, specialties),
		ExperienceLevel: experience,
		IsPublic:        true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create roaster profile: %v", err)
	}
	return user
}

func createTestRequest(t *testing.T, db *gorm.DB, creatorID string, slots int) *models.RoastRequest {
	t.Helper()
	request := &models.RoastRequest{
		CreatorID:          creatorID,
		Title:              "Roast my onboarding flow",
		Description:        "First-run experience feels clunky, tell me why users drop off.",
		AppURL:             "https://example.com/app",
		FocusAreas:         mustJSON(t, []string{"ux", "onboarding"}),
		FeedbackMode:       models.FeedbackModeTargeted,
		Questions:          mustJSON(t, []string{"Is the signup clear?"}),
		FeedbacksRequested: slots,
		PricePerRoaster:    500,
		TotalPrice:         500 * slots,
		Status:             models.RequestStatusOpen,
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return request
}
