package repositories

import (
	"errors"

	"roastmyapp_backend/internal/models"

	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	CreateCreatorProfile(db *gorm.DB, profile *models.CreatorProfile) error
	CreateRoasterProfile(db *gorm.DB, profile *models.RoasterProfile) error
	FindCreatorProfileByUser(db *gorm.DB, userID string) (*models.CreatorProfile, error)
	FindRoasterProfileByUser(db *gorm.DB, userID string) (*models.RoasterProfile, error)
	UpdateCreatorProfile(db *gorm.DB, profile *models.CreatorProfile) error
	UpdateRoasterProfile(db *gorm.DB, profile *models.RoasterProfile) error

	// GetRoasterStats считает производную статистику ростера агрегацией
	// по строкам feedbacks/roast_applications. Никаких кэшированных счетчиков:
	// результат всегда воспроизводим из исходных записей.
	GetRoasterStats(db *gorm.DB, roasterID string) (*models.RoasterStats, error)
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

func (r *ProfileRepositoryImpl) CreateCreatorProfile(db *gorm.DB, profile *models.CreatorProfile) error {
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) CreateRoasterProfile(db *gorm.DB, profile *models.RoasterProfile) error {
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindCreatorProfileByUser(db *gorm.DB, userID string) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	err := db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindRoasterProfileByUser(db *gorm.DB, userID string) (*models.RoasterProfile, error) {
	var profile models.RoasterProfile
	err := db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) UpdateCreatorProfile(db *gorm.DB, profile *models.CreatorProfile) error {
	return db.Save(profile).Error
}

func (r *ProfileRepositoryImpl) UpdateRoasterProfile(db *gorm.DB, profile *models.RoasterProfile) error {
	return db.Save(profile).Error
}

func (r *ProfileRepositoryImpl) GetRoasterStats(db *gorm.DB, roasterID string) (*models.RoasterStats, error) {
	stats := &models.RoasterStats{RoasterID: roasterID}

	// Средний рейтинг по завершенным фидбекам с оценкой.
	var rating *float64
	err := db.Model(&models.Feedback{}).
		Where("roaster_id = ? AND status = ? AND creator_rating IS NOT NULL", roasterID, models.FeedbackStatusCompleted).
		Select("AVG(creator_rating)").
		Scan(&rating).Error
	if err != nil {
		return nil, err
	}
	if rating != nil {
		stats.Rating = *rating
	}

	// Завершенные роасты и суммарный заработок.
	row := db.Model(&models.Feedback{}).
		Where("roaster_id = ? AND status = ?", roasterID, models.FeedbackStatusCompleted).
		Select("COUNT(*), COALESCE(SUM(final_price), 0)").
		Row()
	if err := row.Scan(&stats.CompletedRoasts, &stats.TotalEarned); err != nil {
		return nil, err
	}

	// Сколько раз ростер был выбран (вручную или автоматически).
	err = db.Model(&models.RoastApplication{}).
		Where("roaster_id = ? AND status IN ?", roasterID, []models.ApplicationStatus{
			models.ApplicationStatusAccepted,
			models.ApplicationStatusAutoSelected,
		}).
		Count(&stats.SelectedTotal).Error
	if err != nil {
		return nil, err
	}

	if stats.SelectedTotal > 0 {
		stats.CompletionRate = float64(stats.CompletedRoasts) / float64(stats.SelectedTotal)
	}

	stats.Level = models.RoasterLevelForCount(stats.CompletedRoasts)

	return stats, nil
}
