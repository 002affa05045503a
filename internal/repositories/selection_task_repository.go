package repositories

import (
	"errors"
	"time"

	"roastmyapp_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSelectionTaskNotFound = errors.New("selection task not found")

type SelectionTaskRepository interface {
	// Create создает задачу авто-выбора. Повторное создание для того же
	// запроса (дубликат по уникальному индексу) - no-op: таймер уже заведен.
	Create(db *gorm.DB, task *models.SelectionTask) error

	FindByRequest(db *gorm.DB, requestID string) (*models.SelectionTask, error)

	// FindDue возвращает необработанные задачи с наступившим дедлайном.
	FindDue(db *gorm.DB, now time.Time, limit int) ([]models.SelectionTask, error)

	MarkProcessed(db *gorm.DB, requestID string, at time.Time) error

	// RecordFailure фиксирует неудачную попытку; задача остается необработанной
	// и будет подобрана следующим тиком воркера.
	RecordFailure(db *gorm.DB, requestID string, cause error) error
}

type SelectionTaskRepositoryImpl struct{}

func NewSelectionTaskRepository() SelectionTaskRepository {
	return &SelectionTaskRepositoryImpl{}
}

func (r *SelectionTaskRepositoryImpl) Create(db *gorm.DB, task *models.SelectionTask) error {
	if err := db.Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

func (r *SelectionTaskRepositoryImpl) FindByRequest(db *gorm.DB, requestID string) (*models.SelectionTask, error) {
	var task models.SelectionTask
	err := db.First(&task, "roast_request_id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSelectionTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *SelectionTaskRepositoryImpl) FindDue(db *gorm.DB, now time.Time, limit int) ([]models.SelectionTask, error) {
	var tasks []models.SelectionTask
	query := db.Where("processed_at IS NULL AND due_at <= ?", now).Order("due_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&tasks).Error
	return tasks, err
}

func (r *SelectionTaskRepositoryImpl) MarkProcessed(db *gorm.DB, requestID string, at time.Time) error {
	return db.Model(&models.SelectionTask{}).
		Where("roast_request_id = ?", requestID).
		Update("processed_at", at).Error
}

func (r *SelectionTaskRepositoryImpl) RecordFailure(db *gorm.DB, requestID string, cause error) error {
	return db.Model(&models.SelectionTask{}).
		Where("roast_request_id = ?", requestID).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause.Error(),
		}).Error
}
