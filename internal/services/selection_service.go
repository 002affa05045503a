package services

import (
	"time"

	"roastmyapp_backend/internal/logger"
	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// SweepReport - итог одного прохода по просроченным задачам авто-выбора.
type SweepReport struct {
	TasksDue     int
	Processed    int
	AutoSelected int
	Failed       int
}

type SelectionService interface {
	// ProcessDueTasks обрабатывает все задачи с наступившим дедлайном.
	// Каждая задача идет в собственной транзакции: сбой одной не мешает
	// остальным. Метод идемпотентен - повторный вызов с тем же now ничего
	// не меняет.
	ProcessDueTasks(db *gorm.DB, now time.Time, limit int) (*SweepReport, error)
}

type SelectionServiceImpl struct {
	requestRepo  repositories.RequestRepository
	appRepo      repositories.ApplicationRepository
	feedbackRepo repositories.FeedbackRepository
	taskRepo     repositories.SelectionTaskRepository
}

func NewSelectionService(
	requestRepo repositories.RequestRepository,
	appRepo repositories.ApplicationRepository,
	feedbackRepo repositories.FeedbackRepository,
	taskRepo repositories.SelectionTaskRepository,
) SelectionService {
	return &SelectionServiceImpl{
		requestRepo:  requestRepo,
		appRepo:      appRepo,
		feedbackRepo: feedbackRepo,
		taskRepo:     taskRepo,
	}
}

func (s *SelectionServiceImpl) ProcessDueTasks(db *gorm.DB, now time.Time, limit int) (*SweepReport, error) {
	tasks, err := s.taskRepo.FindDue(db, now, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	report := &SweepReport{TasksDue: len(tasks)}

	for i := range tasks {
		task := &tasks[i]

		selected, err := s.sweepRequest(db, task)
		if err != nil {
			report.Failed++
			logger.Error("auto-selection sweep failed",
				"request_id", task.RoastRequestID,
				"attempts", task.Attempts+1,
				"error", err,
			)
			if recErr := s.taskRepo.RecordFailure(db, task.RoastRequestID, err); recErr != nil {
				logger.Error("failed to record sweep failure", "request_id", task.RoastRequestID, "error", recErr)
			}
			continue
		}

		report.Processed++
		report.AutoSelected += selected
	}

	if report.TasksDue > 0 {
		logger.Info("selection sweep finished",
			"due", report.TasksDue,
			"processed", report.Processed,
			"auto_selected", report.AutoSelected,
			"failed", report.Failed,
		)
	}

	return report, nil
}

// sweepRequest выполняет авто-выбор по одному запросу. Возвращает число
// автоматически выбранных заявок.
//
// Запрос перечитывается под блокировкой: если владелец успел заполнить
// слоты вручную или отменить запрос, статус уже не collecting_applications
// и задача просто гасится. Ранжирование: скор по убыванию, при равенстве -
// более ранняя подача. Детерминированность порядка гарантирует репозиторий.
func (s *SelectionServiceImpl) sweepRequest(db *gorm.DB, task *models.SelectionTask) (int, error) {
	selectedCount := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.FindByIDForUpdate(tx, task.RoastRequestID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrRequestNotFound) {
				// Запрос удален; задачу гасим, чтобы не крутить ее вечно.
				return s.taskRepo.MarkProcessed(tx, task.RoastRequestID, time.Now())
			}
			return err
		}

		if request.Status != models.RequestStatusCollecting {
			return s.taskRepo.MarkProcessed(tx, task.RoastRequestID, time.Now())
		}

		selected, err := s.appRepo.CountSelected(tx, request.ID)
		if err != nil {
			return err
		}

		free := request.FeedbacksRequested - int(selected)
		if free > 0 {
			ranked, err := s.appRepo.ListPendingRanked(tx, request.ID)
			if err != nil {
				return err
			}

			for _, app := range ranked {
				if selectedCount >= free {
					break
				}
				// SelectedAt = дедлайн задачи: момент, когда выбор фактически
				// был решен, а не когда воркер до него добрался.
				if err := s.appRepo.MarkSelected(tx, app.ID, models.ApplicationStatusAutoSelected, task.DueAt); err != nil {
					return err
				}
				if err := s.feedbackRepo.Create(tx, &models.Feedback{
					RoastRequestID: request.ID,
					ApplicationID:  app.ID,
					RoasterID:      app.RoasterID,
					Status:         models.FeedbackStatusDraft,
					FinalPrice:     request.PricePerRoaster,
				}); err != nil {
					return err
				}
				selectedCount++
			}
		}

		if int(selected)+selectedCount >= request.FeedbacksRequested {
			// Все слоты заняты - набор закрывается.
			if _, err := s.appRepo.RejectPending(tx, request.ID); err != nil {
				return err
			}
			if err := s.requestRepo.UpdateStatus(tx, request.ID, models.RequestStatusInProgress); err != nil {
				return err
			}
		}
		// Заявок не хватило на все слоты: запрос остается в
		// collecting_applications, владелец может добрать вручную или
		// отменить; задача при этом обработана.

		return s.taskRepo.MarkProcessed(tx, task.RoastRequestID, time.Now())
	})
	if err != nil {
		return 0, err
	}

	return selectedCount, nil
}
