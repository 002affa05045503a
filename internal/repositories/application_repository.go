package repositories

import (
	"errors"
	"time"

	"roastmyapp_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound      = errors.New("application not found")
	ErrApplicationAlreadyExists = errors.New("application already exists for this roaster and request")
)

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.RoastApplication) error
	FindByID(db *gorm.DB, id string) (*models.RoastApplication, error)
	FindByRoasterAndRequest(db *gorm.DB, roasterID, requestID string) (*models.RoastApplication, error)
	ListByRequest(db *gorm.DB, requestID string) ([]models.RoastApplication, error)
	ListByRoaster(db *gorm.DB, roasterID string) ([]models.RoastApplication, error)

	// ListPendingRanked возвращает pending-заявки запроса в детерминированном
	// порядке авто-выбора: скор по убыванию, при равенстве - более ранняя подача.
	ListPendingRanked(db *gorm.DB, requestID string) ([]models.RoastApplication, error)

	// CountSelected считает занятые слоты (accepted + auto_selected).
	CountSelected(db *gorm.DB, requestID string) (int64, error)

	MarkSelected(db *gorm.DB, id string, status models.ApplicationStatus, selectedAt time.Time) error
	UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus) error

	// RejectPending переводит все pending-заявки запроса в rejected.
	RejectPending(db *gorm.DB, requestID string) (int64, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, app *models.RoastApplication) error {
	if err := db.Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrApplicationAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.RoastApplication, error) {
	var app models.RoastApplication
	err := db.First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByRoasterAndRequest(db *gorm.DB, roasterID, requestID string) (*models.RoastApplication, error) {
	var app models.RoastApplication
	err := db.First(&app, "roaster_id = ? AND roast_request_id = ?", roasterID, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) ListByRequest(db *gorm.DB, requestID string) ([]models.RoastApplication, error) {
	var apps []models.RoastApplication
	err := db.Where("roast_request_id = ?", requestID).
		Order("score DESC, created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) ListByRoaster(db *gorm.DB, roasterID string) ([]models.RoastApplication, error) {
	var apps []models.RoastApplication
	err := db.Where("roaster_id = ?", roasterID).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) ListPendingRanked(db *gorm.DB, requestID string) ([]models.RoastApplication, error) {
	var apps []models.RoastApplication
	err := db.Where("roast_request_id = ? AND status = ?", requestID, models.ApplicationStatusPending).
		Order("score DESC, created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) CountSelected(db *gorm.DB, requestID string) (int64, error) {
	var count int64
	err := db.Model(&models.RoastApplication{}).
		Where("roast_request_id = ? AND status IN ?", requestID, []models.ApplicationStatus{
			models.ApplicationStatusAccepted,
			models.ApplicationStatusAutoSelected,
		}).
		Count(&count).Error
	return count, err
}

func (r *ApplicationRepositoryImpl) MarkSelected(db *gorm.DB, id string, status models.ApplicationStatus, selectedAt time.Time) error {
	return db.Model(&models.RoastApplication{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"selected_at": selectedAt,
		}).Error
}

func (r *ApplicationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus) error {
	return db.Model(&models.RoastApplication{}).Where("id = ?", id).Update("status", status).Error
}

func (r *ApplicationRepositoryImpl) RejectPending(db *gorm.DB, requestID string) (int64, error) {
	result := db.Model(&models.RoastApplication{}).
		Where("roast_request_id = ? AND status = ?", requestID, models.ApplicationStatusPending).
		Update("status", models.ApplicationStatusRejected)
	return result.RowsAffected, result.Error
}
