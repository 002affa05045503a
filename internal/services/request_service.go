package services

import (
	"encoding/json"
	"time"

	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/logger"
	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/pricing"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RequestService interface {
	Create(db *gorm.DB, creatorID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	Get(db *gorm.DB, requestID, requesterID string) (*dto.RequestResponse, error)
	Update(db *gorm.DB, requestID, requesterID string, req *dto.UpdateRequestRequest) error
	Cancel(db *gorm.DB, requestID, requesterID string) error
	ListByCreator(db *gorm.DB, creatorID string) ([]*dto.RequestResponse, error)
	Search(db *gorm.DB, req *dto.SearchRequestsRequest) ([]*dto.RequestResponse, int64, error)
	Quote(req *dto.PricingQuoteRequest) (*pricing.Breakdown, error)
}

type RequestServiceImpl struct {
	requestRepo repositories.RequestRepository
	appRepo     repositories.ApplicationRepository
	taskRepo    repositories.SelectionTaskRepository
	profileRepo repositories.ProfileRepository
}

func NewRequestService(
	requestRepo repositories.RequestRepository,
	appRepo repositories.ApplicationRepository,
	taskRepo repositories.SelectionTaskRepository,
	profileRepo repositories.ProfileRepository,
) RequestService {
	return &RequestServiceImpl{
		requestRepo: requestRepo,
		appRepo:     appRepo,
		taskRepo:    taskRepo,
		profileRepo: profileRepo,
	}
}

// Request Operations

// Create публикует новый запрос. Цены фиксируются на момент создания
// из актуальной прайс-таблицы и больше не пересчитываются.
func (s *RequestServiceImpl) Create(db *gorm.DB, creatorID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if _, err := s.profileRepo.FindCreatorProfileByUser(db, creatorID); err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrProfileRequired
		}
		return nil, apperrors.InternalError(err)
	}

	questionCount := len(req.Questions)
	breakdown, err := pricing.Calculate(
		config.GetConfig().Pricing,
		req.FeedbackMode,
		questionCount,
		req.FeedbacksRequested,
		req.IsUrgent,
	)
	if err != nil {
		return nil, mapPricingError(err)
	}

	focusJSON, err := json.Marshal(req.FocusAreas)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	questions := req.Questions
	if req.FeedbackMode == models.FeedbackModeFree {
		// FREE не содержит вопросов независимо от входа.
		questions = nil
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	request := &models.RoastRequest{
		CreatorID:          creatorID,
		Title:              req.Title,
		Description:        req.Description,
		AppURL:             req.AppURL,
		FocusAreas:         datatypes.JSON(focusJSON),
		FeedbackMode:       req.FeedbackMode,
		Questions:          datatypes.JSON(questionsJSON),
		FeedbacksRequested: req.FeedbacksRequested,
		IsUrgent:           req.IsUrgent,
		PricePerRoaster:    breakdown.PerRoasterTotal,
		TotalPrice:         breakdown.GrandTotal,
		Status:             models.RequestStatusOpen,
	}

	if err := s.requestRepo.Create(db, request); err != nil {
		return nil, apperrors.InternalError(err)
	}

	response := s.buildResponse(db, request, true)
	response.Pricing = breakdown
	return response, nil
}

func (s *RequestServiceImpl) Get(db *gorm.DB, requestID, requesterID string) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindByID(db, requestID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.NewNotFoundError("Roast request")
		}
		return nil, apperrors.InternalError(err)
	}

	isOwner := requesterID == request.CreatorID
	if !isOwner {
		// Одним UPDATE, в том же хендле что и чтение: уход в горутину
		// ломается, когда db - транзакция из middleware.
		if err := s.requestRepo.IncrementViews(db, requestID); err != nil {
			logger.Warn("failed to increment request views", "request_id", requestID, "error", err)
		}
	}

	return s.buildResponse(db, request, isOwner), nil
}

// Update разрешен владельцу и только пока запрос в статусе open:
// после первой заявки условия менять нельзя.
func (s *RequestServiceImpl) Update(db *gorm.DB, requestID, requesterID string, req *dto.UpdateRequestRequest) error {
	request, err := s.requestRepo.FindByID(db, requestID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRequestNotFound) {
			return apperrors.NewNotFoundError("Roast request")
		}
		return apperrors.InternalError(err)
	}

	if request.CreatorID != requesterID {
		return apperrors.ErrInsufficientPermissions
	}

	if request.Status != models.RequestStatusOpen {
		return apperrors.ErrInvalidRequestStatus
	}

	if req.Title != nil {
		request.Title = *req.Title
	}
	if req.Description != nil {
		request.Description = *req.Description
	}
	if req.AppURL != nil {
		request.AppURL = *req.AppURL
	}
	if req.FocusAreas != nil {
		focusJSON, err := json.Marshal(req.FocusAreas)
		if err != nil {
			return apperrors.InternalError(err)
		}
		request.FocusAreas = datatypes.JSON(focusJSON)
	}

	if err := s.requestRepo.Update(db, request); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// Cancel переводит запрос в cancelled из любого нетерминального статуса.
// Все pending-заявки отклоняются, задача авто-выбора гасится.
func (s *RequestServiceImpl) Cancel(db *gorm.DB, requestID, requesterID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.FindByIDForUpdate(tx, requestID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrRequestNotFound) {
				return apperrors.NewNotFoundError("Roast request")
			}
			return apperrors.InternalError(err)
		}

		if request.CreatorID != requesterID {
			return apperrors.ErrInsufficientPermissions
		}

		if request.Status == models.RequestStatusCompleted || request.Status == models.RequestStatusCancelled {
			return apperrors.ErrInvalidRequestStatus
		}

		if _, err := s.appRepo.RejectPending(tx, requestID); err != nil {
			return apperrors.InternalError(err)
		}

		if err := s.requestRepo.UpdateStatus(tx, requestID, models.RequestStatusCancelled); err != nil {
			return apperrors.InternalError(err)
		}

		// Sweep на отмененном запросе и так no-op, но гасим задачу явно.
		if err := s.taskRepo.MarkProcessed(tx, requestID, time.Now()); err != nil {
			return apperrors.InternalError(err)
		}

		return nil
	})
}

func (s *RequestServiceImpl) ListByCreator(db *gorm.DB, creatorID string) ([]*dto.RequestResponse, error) {
	requests, err := s.requestRepo.ListByCreator(db, creatorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]*dto.RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, s.buildResponse(db, &requests[i], true))
	}
	return responses, nil
}

func (s *RequestServiceImpl) Search(db *gorm.DB, req *dto.SearchRequestsRequest) ([]*dto.RequestResponse, int64, error) {
	criteria := repositories.RequestSearchCriteria{
		Query:        req.Query,
		Status:       models.RequestStatus(req.Status),
		FeedbackMode: models.FeedbackMode(req.FeedbackMode),
		Page:         req.Page,
		PageSize:     req.PageSize,
	}

	requests, total, err := s.requestRepo.Search(db, criteria)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]*dto.RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, s.buildResponse(db, &requests[i], false))
	}
	return responses, total, nil
}

// Quote - публичный расчет стоимости без создания запроса.
func (s *RequestServiceImpl) Quote(req *dto.PricingQuoteRequest) (*pricing.Breakdown, error) {
	breakdown, err := pricing.Calculate(
		config.GetConfig().Pricing,
		models.FeedbackMode(req.FeedbackMode),
		req.QuestionCount,
		req.RoasterCount,
		req.IsUrgent,
	)
	if err != nil {
		return nil, mapPricingError(err)
	}
	return breakdown, nil
}

// Helper Methods

func (s *RequestServiceImpl) buildResponse(db *gorm.DB, request *models.RoastRequest, isOwner bool) *dto.RequestResponse {
	response := &dto.RequestResponse{
		ID:                 request.ID,
		CreatorID:          request.CreatorID,
		Title:              request.Title,
		Description:        request.Description,
		AppURL:             request.AppURL,
		FocusAreas:         request.GetFocusAreas(),
		FeedbackMode:       request.FeedbackMode,
		FeedbacksRequested: request.FeedbacksRequested,
		IsUrgent:           request.IsUrgent,
		PricePerRoaster:    request.PricePerRoaster,
		TotalPrice:         request.TotalPrice,
		Status:             request.Status,
		SelectionDeadline:  request.SelectionDeadline,
		Views:              request.Views,
		CreatedAt:          request.CreatedAt,
	}

	selected, err := s.appRepo.CountSelected(db, request.ID)
	if err == nil {
		response.SlotsRemaining = request.FeedbacksRequested - int(selected)
	}

	if isOwner {
		response.Questions = request.GetQuestions()

		apps, err := s.appRepo.ListByRequest(db, request.ID)
		if err == nil {
			summaries := make([]dto.ApplicationSummary, 0, len(apps))
			for i := range apps {
				summaries = append(summaries, buildApplicationSummary(&apps[i]))
			}
			response.Applications = summaries
		}
	}

	return response
}

func mapPricingError(err error) *apperrors.AppError {
	switch {
	case apperrors.Is(err, pricing.ErrTooManyQuestions):
		return apperrors.NewBadRequestError("Too many questions for the selected feedback mode")
	case apperrors.Is(err, pricing.ErrNegativeQuantity),
		apperrors.Is(err, pricing.ErrNoRoasters),
		apperrors.Is(err, pricing.ErrUnknownMode):
		return apperrors.NewBadRequestError(err.Error())
	default:
		return apperrors.InternalError(err)
	}
}
