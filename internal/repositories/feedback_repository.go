package repositories

import (
	"errors"

	"roastmyapp_backend/internal/models"

	"gorm.io/gorm"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

type FeedbackRepository interface {
	Create(db *gorm.DB, feedback *models.Feedback) error
	FindByID(db *gorm.DB, id string) (*models.Feedback, error)
	FindByApplication(db *gorm.DB, applicationID string) (*models.Feedback, error)
	ListByRequest(db *gorm.DB, requestID string) ([]models.Feedback, error)
	ListByRoaster(db *gorm.DB, roasterID string) ([]models.Feedback, error)
	Update(db *gorm.DB, feedback *models.Feedback) error

	// CountUncompleted считает незавершенные фидбеки запроса.
	// Ноль означает, что запрос можно переводить в completed.
	CountUncompleted(db *gorm.DB, requestID string) (int64, error)
}

type FeedbackRepositoryImpl struct{}

func NewFeedbackRepository() FeedbackRepository {
	return &FeedbackRepositoryImpl{}
}

func (r *FeedbackRepositoryImpl) Create(db *gorm.DB, feedback *models.Feedback) error {
	return db.Create(feedback).Error
}

func (r *FeedbackRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := db.First(&feedback, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepositoryImpl) FindByApplication(db *gorm.DB, applicationID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := db.First(&feedback, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepositoryImpl) ListByRequest(db *gorm.DB, requestID string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := db.Where("roast_request_id = ?", requestID).Order("created_at ASC").Find(&feedbacks).Error
	return feedbacks, err
}

func (r *FeedbackRepositoryImpl) ListByRoaster(db *gorm.DB, roasterID string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := db.Where("roaster_id = ?", roasterID).Order("created_at DESC").Find(&feedbacks).Error
	return feedbacks, err
}

func (r *FeedbackRepositoryImpl) Update(db *gorm.DB, feedback *models.Feedback) error {
	return db.Save(feedback).Error
}

func (r *FeedbackRepositoryImpl) CountUncompleted(db *gorm.DB, requestID string) (int64, error) {
	var count int64
	err := db.Model(&models.Feedback{}).
		Where("roast_request_id = ? AND status <> ?", requestID, models.FeedbackStatusCompleted).
		Count(&count).Error
	return count, err
}
