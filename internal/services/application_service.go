package services

import (
	"strings"
	"time"

	"roastmyapp_backend/internal/algorithms"
	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/logger"
	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ApplicationService interface {
	Apply(db *gorm.DB, requestID, roasterID string, req *dto.ApplyRequest) (*dto.ApplicationSummary, error)
	Select(db *gorm.DB, applicationID, requesterID string) error
	Reject(db *gorm.DB, applicationID, requesterID string) error
	Withdraw(db *gorm.DB, applicationID, roasterID string) error
	ListForRequest(db *gorm.DB, requestID, requesterID string) ([]dto.ApplicationSummary, error)
	ListForRoaster(db *gorm.DB, roasterID string) ([]dto.ApplicationSummary, error)
}

type ApplicationServiceImpl struct {
	requestRepo  repositories.RequestRepository
	appRepo      repositories.ApplicationRepository
	profileRepo  repositories.ProfileRepository
	feedbackRepo repositories.FeedbackRepository
	taskRepo     repositories.SelectionTaskRepository
}

func NewApplicationService(
	requestRepo repositories.RequestRepository,
	appRepo repositories.ApplicationRepository,
	profileRepo repositories.ProfileRepository,
	feedbackRepo repositories.FeedbackRepository,
	taskRepo repositories.SelectionTaskRepository,
) ApplicationService {
	return &ApplicationServiceImpl{
		requestRepo:  requestRepo,
		appRepo:      appRepo,
		profileRepo:  profileRepo,
		feedbackRepo: feedbackRepo,
		taskRepo:     taskRepo,
	}
}

// Application Operations

// Apply подает заявку ростера на запрос. Скор вычисляется один раз,
// здесь и сейчас, по текущему профилю и статистике: дальнейшие изменения
// профиля на уже поданную заявку не влияют.
//
// Первая заявка переводит запрос open -> collecting_applications,
// выставляет дедлайн ручного выбора и заводит персистентную задачу
// авто-выбора.
func (s *ApplicationServiceImpl) Apply(db *gorm.DB, requestID, roasterID string, req *dto.ApplyRequest) (*dto.ApplicationSummary, error) {
	profile, err := s.profileRepo.FindRoasterProfileByUser(db, roasterID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrProfileRequired
		}
		return nil, apperrors.InternalError(err)
	}

	stats, err := s.profileRepo.GetRoasterStats(db, roasterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var summary dto.ApplicationSummary

	txErr := db.Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.FindByIDForUpdate(tx, requestID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrRequestNotFound) {
				return apperrors.NewNotFoundError("Roast request")
			}
			return apperrors.InternalError(err)
		}

		if request.CreatorID == roasterID {
			return apperrors.ErrCannotApplyToOwnRequest
		}

		if !request.Status.AcceptsApplications() {
			return apperrors.ErrRequestClosed
		}

		selected, err := s.appRepo.CountSelected(tx, requestID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if int(selected) >= request.FeedbacksRequested {
			return apperrors.ErrNoSlotsAvailable
		}

		score, reasons := algorithms.CalculateApplicationScore(request, profile, stats, config.GetConfig().Scoring)

		app := &models.RoastApplication{
			RoastRequestID: requestID,
			RoasterID:      roasterID,
			Motivation:     req.Motivation,
			Status:         models.ApplicationStatusPending,
			Score:          score,
			ScoreReasons:   strings.Join(reasons, ";"),
		}

		if err := s.appRepo.Create(tx, app); err != nil {
			if apperrors.Is(err, repositories.ErrApplicationAlreadyExists) {
				return apperrors.ErrAlreadyApplied
			}
			return apperrors.InternalError(err)
		}

		if request.Status == models.RequestStatusOpen {
			deadline := time.Now().Add(time.Duration(config.GetConfig().Selection.WindowHours) * time.Hour)

			if err := s.requestRepo.UpdateStatus(tx, requestID, models.RequestStatusCollecting); err != nil {
				return apperrors.InternalError(err)
			}
			if err := s.requestRepo.SetSelectionDeadline(tx, requestID, deadline); err != nil {
				return apperrors.InternalError(err)
			}
			if err := s.taskRepo.Create(tx, &models.SelectionTask{
				RoastRequestID: requestID,
				DueAt:          deadline,
			}); err != nil {
				return apperrors.InternalError(err)
			}

			logger.Info("selection window opened",
				"request_id", requestID,
				"deadline", deadline,
			)
		}

		summary = buildApplicationSummary(app)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &summary, nil
}

// Select - ручной выбор ростера владельцем запроса внутри окна.
// Когда выбор заполняет последний слот, остальные pending-заявки
// отклоняются и запрос переходит в in_progress.
func (s *ApplicationServiceImpl) Select(db *gorm.DB, applicationID, requesterID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByID(tx, applicationID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrApplicationNotFound) {
				return apperrors.NewNotFoundError("Application")
			}
			return apperrors.InternalError(err)
		}

		request, err := s.requestRepo.FindByIDForUpdate(tx, app.RoastRequestID)
		if err != nil {
			return apperrors.InternalError(err)
		}

		if request.CreatorID != requesterID {
			return apperrors.ErrInsufficientPermissions
		}
		if request.Status != models.RequestStatusCollecting {
			return apperrors.ErrInvalidRequestStatus
		}
		if app.Status != models.ApplicationStatusPending {
			return apperrors.ErrApplicationDecided
		}

		selected, err := s.appRepo.CountSelected(tx, request.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if int(selected) >= request.FeedbacksRequested {
			return apperrors.ErrNoSlotsAvailable
		}

		if err := s.appRepo.MarkSelected(tx, app.ID, models.ApplicationStatusAccepted, time.Now()); err != nil {
			return apperrors.InternalError(err)
		}

		if err := s.feedbackRepo.Create(tx, &models.Feedback{
			RoastRequestID: request.ID,
			ApplicationID:  app.ID,
			RoasterID:      app.RoasterID,
			Status:         models.FeedbackStatusDraft,
			FinalPrice:     request.PricePerRoaster,
		}); err != nil {
			return apperrors.InternalError(err)
		}

		if int(selected)+1 >= request.FeedbacksRequested {
			if err := s.finalizeSelection(tx, request.ID); err != nil {
				return err
			}
		}

		return nil
	})
}

// Reject - явный отказ владельца по pending-заявке.
func (s *ApplicationServiceImpl) Reject(db *gorm.DB, applicationID, requesterID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByID(tx, applicationID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrApplicationNotFound) {
				return apperrors.NewNotFoundError("Application")
			}
			return apperrors.InternalError(err)
		}

		request, err := s.requestRepo.FindByID(tx, app.RoastRequestID)
		if err != nil {
			return apperrors.InternalError(err)
		}

		if request.CreatorID != requesterID {
			return apperrors.ErrInsufficientPermissions
		}
		if app.Status != models.ApplicationStatusPending {
			return apperrors.ErrApplicationDecided
		}

		return s.appRepo.UpdateStatus(tx, app.ID, models.ApplicationStatusRejected)
	})
}

// Withdraw - отзыв собственной pending-заявки ростером. Отозванная заявка
// терминальна: повторная подача на тот же запрос невозможна.
func (s *ApplicationServiceImpl) Withdraw(db *gorm.DB, applicationID, roasterID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByID(tx, applicationID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrApplicationNotFound) {
				return apperrors.NewNotFoundError("Application")
			}
			return apperrors.InternalError(err)
		}

		if app.RoasterID != roasterID {
			return apperrors.ErrInsufficientPermissions
		}
		if app.Status != models.ApplicationStatusPending {
			return apperrors.ErrApplicationDecided
		}

		return s.appRepo.UpdateStatus(tx, app.ID, models.ApplicationStatusWithdrawn)
	})
}

func (s *ApplicationServiceImpl) ListForRequest(db *gorm.DB, requestID, requesterID string) ([]dto.ApplicationSummary, error) {
	request, err := s.requestRepo.FindByID(db, requestID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.NewNotFoundError("Roast request")
		}
		return nil, apperrors.InternalError(err)
	}

	if request.CreatorID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	apps, err := s.appRepo.ListByRequest(db, requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	summaries := make([]dto.ApplicationSummary, 0, len(apps))
	for i := range apps {
		summaries = append(summaries, buildApplicationSummary(&apps[i]))
	}
	return summaries, nil
}

func (s *ApplicationServiceImpl) ListForRoaster(db *gorm.DB, roasterID string) ([]dto.ApplicationSummary, error) {
	apps, err := s.appRepo.ListByRoaster(db, roasterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	summaries := make([]dto.ApplicationSummary, 0, len(apps))
	for i := range apps {
		summaries = append(summaries, buildApplicationSummary(&apps[i]))
	}
	return summaries, nil
}

// Helper Methods

// finalizeSelection закрывает набор: оставшиеся pending отклоняются,
// запрос переходит в in_progress, задача авто-выбора гасится.
func (s *ApplicationServiceImpl) finalizeSelection(tx *gorm.DB, requestID string) error {
	if _, err := s.appRepo.RejectPending(tx, requestID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.requestRepo.UpdateStatus(tx, requestID, models.RequestStatusInProgress); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.taskRepo.MarkProcessed(tx, requestID, time.Now()); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func buildApplicationSummary(app *models.RoastApplication) dto.ApplicationSummary {
	summary := dto.ApplicationSummary{
		ID:         app.ID,
		RoasterID:  app.RoasterID,
		Motivation: app.Motivation,
		Status:     app.Status,
		Score:      app.Score,
		SelectedAt: app.SelectedAt,
		CreatedAt:  app.CreatedAt,
	}
	if app.ScoreReasons != "" {
		summary.Reasons = strings.Split(app.ScoreReasons, ";")
	}
	if app.Roaster != nil {
		summary.RoasterName = app.Roaster.Name
	}
	return summary
}
