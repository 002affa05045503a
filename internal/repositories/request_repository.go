package repositories

import (
	"errors"
	"strings"
	"time"

	"roastmyapp_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRequestNotFound = errors.New("roast request not found")

// RequestSearchCriteria - фильтры публичного поиска запросов.
type RequestSearchCriteria struct {
	Query        string
	Status       models.RequestStatus
	FeedbackMode models.FeedbackMode
	CreatorID    string
	Page         int
	PageSize     int
}

type RequestRepository interface {
	Create(db *gorm.DB, request *models.RoastRequest) error
	FindByID(db *gorm.DB, id string) (*models.RoastRequest, error)

	// FindByIDForUpdate читает запрос с блокировкой строки. Все проверки
	// занятости слотов обязаны идти через этот метод внутри транзакции,
	// иначе два конкурентных выбора могут оба увидеть свободный слот.
	FindByIDForUpdate(db *gorm.DB, id string) (*models.RoastRequest, error)

	Update(db *gorm.DB, request *models.RoastRequest) error
	UpdateStatus(db *gorm.DB, id string, status models.RequestStatus) error
	SetSelectionDeadline(db *gorm.DB, id string, deadline time.Time) error
	Delete(db *gorm.DB, id string) error
	IncrementViews(db *gorm.DB, id string) error

	ListByCreator(db *gorm.DB, creatorID string) ([]models.RoastRequest, error)
	Search(db *gorm.DB, criteria RequestSearchCriteria) ([]models.RoastRequest, int64, error)
}

type RequestRepositoryImpl struct{}

func NewRequestRepository() RequestRepository {
	return &RequestRepositoryImpl{}
}

// lockForUpdate навешивает SELECT ... FOR UPDATE там, где диалект его
// поддерживает. У SQLite единственный писатель, блокировка строк не нужна.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *RequestRepositoryImpl) Create(db *gorm.DB, request *models.RoastRequest) error {
	return db.Create(request).Error
}

func (r *RequestRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.RoastRequest, error) {
	var request models.RoastRequest
	err := db.First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id string) (*models.RoastRequest, error) {
	var request models.RoastRequest
	err := lockForUpdate(db).First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepositoryImpl) Update(db *gorm.DB, request *models.RoastRequest) error {
	return db.Save(request).Error
}

func (r *RequestRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.RequestStatus) error {
	return db.Model(&models.RoastRequest{}).Where("id = ?", id).Update("status", status).Error
}

func (r *RequestRepositoryImpl) SetSelectionDeadline(db *gorm.DB, id string, deadline time.Time) error {
	return db.Model(&models.RoastRequest{}).Where("id = ?", id).Update("selection_deadline", deadline).Error
}

func (r *RequestRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Delete(&models.RoastRequest{}, "id = ?", id).Error
}

func (r *RequestRepositoryImpl) IncrementViews(db *gorm.DB, id string) error {
	return db.Model(&models.RoastRequest{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *RequestRepositoryImpl) ListByCreator(db *gorm.DB, creatorID string) ([]models.RoastRequest, error) {
	var requests []models.RoastRequest
	err := db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *RequestRepositoryImpl) Search(db *gorm.DB, criteria RequestSearchCriteria) ([]models.RoastRequest, int64, error) {
	query := db.Model(&models.RoastRequest{})

	if criteria.Query != "" {
		like := "%" + strings.ToLower(criteria.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.FeedbackMode != "" {
		query = query.Where("feedback_mode = ?", criteria.FeedbackMode)
	}
	if criteria.CreatorID != "" {
		query = query.Where("creator_id = ?", criteria.CreatorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var requests []models.RoastRequest
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error

	return requests, total, err
}
