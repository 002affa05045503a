package services

import (
	"time"

	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type FeedbackService interface {
	Submit(db *gorm.DB, feedbackID, roasterID string, req *dto.SubmitFeedbackRequest) error
	Complete(db *gorm.DB, feedbackID, requesterID string) error
	Rate(db *gorm.DB, feedbackID, requesterID string, req *dto.RateFeedbackRequest) error
	Get(db *gorm.DB, feedbackID, requesterID string) (*dto.FeedbackResponse, error)
	ListForRequest(db *gorm.DB, requestID, requesterID string) ([]dto.FeedbackResponse, error)
	ListForRoaster(db *gorm.DB, roasterID string) ([]dto.FeedbackResponse, error)
}

type FeedbackServiceImpl struct {
	feedbackRepo repositories.FeedbackRepository
	requestRepo  repositories.RequestRepository
}

func NewFeedbackService(
	feedbackRepo repositories.FeedbackRepository,
	requestRepo repositories.RequestRepository,
) FeedbackService {
	return &FeedbackServiceImpl{
		feedbackRepo: feedbackRepo,
		requestRepo:  requestRepo,
	}
}

// Feedback Operations

// Submit отправляет фидбек создателю: draft -> pending.
// Контент можно перезаписывать, пока фидбек в draft; после отправки
// редактирование закрыто.
func (s *FeedbackServiceImpl) Submit(db *gorm.DB, feedbackID, roasterID string, req *dto.SubmitFeedbackRequest) error {
	return db.Transaction(func(tx *gorm.DB) error {
		feedback, err := s.feedbackRepo.FindByID(tx, feedbackID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrFeedbackNotFound) {
				return apperrors.NewNotFoundError("Feedback")
			}
			return apperrors.InternalError(err)
		}

		if feedback.RoasterID != roasterID {
			return apperrors.ErrInsufficientPermissions
		}
		if feedback.Status != models.FeedbackStatusDraft {
			return apperrors.ErrFeedbackNotEditable
		}

		now := time.Now()
		feedback.Content = req.Content
		feedback.Status = models.FeedbackStatusPending
		feedback.SubmittedAt = &now

		if err := s.feedbackRepo.Update(tx, feedback); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
}

// Complete - создатель принимает фидбек: pending -> completed.
// Принятие последнего фидбека завершает весь запрос.
func (s *FeedbackServiceImpl) Complete(db *gorm.DB, feedbackID, requesterID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		feedback, err := s.feedbackRepo.FindByID(tx, feedbackID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrFeedbackNotFound) {
				return apperrors.NewNotFoundError("Feedback")
			}
			return apperrors.InternalError(err)
		}

		request, err := s.requestRepo.FindByIDForUpdate(tx, feedback.RoastRequestID)
		if err != nil {
			return apperrors.InternalError(err)
		}

		if request.CreatorID != requesterID {
			return apperrors.ErrInsufficientPermissions
		}
		if feedback.Status != models.FeedbackStatusPending {
			return apperrors.ErrFeedbackNotEditable
		}

		now := time.Now()
		feedback.Status = models.FeedbackStatusCompleted
		feedback.CompletedAt = &now

		if err := s.feedbackRepo.Update(tx, feedback); err != nil {
			return apperrors.InternalError(err)
		}

		remaining, err := s.feedbackRepo.CountUncompleted(tx, request.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if remaining == 0 && request.Status == models.RequestStatusInProgress {
			if err := s.requestRepo.UpdateStatus(tx, request.ID, models.RequestStatusCompleted); err != nil {
				return apperrors.InternalError(err)
			}
		}

		return nil
	})
}

// Rate - однократная оценка завершенного фидбека создателем (1-5).
func (s *FeedbackServiceImpl) Rate(db *gorm.DB, feedbackID, requesterID string, req *dto.RateFeedbackRequest) error {
	return db.Transaction(func(tx *gorm.DB) error {
		feedback, err := s.feedbackRepo.FindByID(tx, feedbackID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrFeedbackNotFound) {
				return apperrors.NewNotFoundError("Feedback")
			}
			return apperrors.InternalError(err)
		}

		request, err := s.requestRepo.FindByID(tx, feedback.RoastRequestID)
		if err != nil {
			return apperrors.InternalError(err)
		}

		if request.CreatorID != requesterID {
			return apperrors.ErrInsufficientPermissions
		}
		if feedback.Status != models.FeedbackStatusCompleted {
			return apperrors.ErrFeedbackNotCompleted
		}
		if feedback.CreatorRating != nil {
			return apperrors.ErrFeedbackAlreadyRated
		}

		now := time.Now()
		rating := req.Rating
		feedback.CreatorRating = &rating
		feedback.RatedAt = &now

		if err := s.feedbackRepo.Update(tx, feedback); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
}

func (s *FeedbackServiceImpl) Get(db *gorm.DB, feedbackID, requesterID string) (*dto.FeedbackResponse, error) {
	feedback, err := s.feedbackRepo.FindByID(db, feedbackID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrFeedbackNotFound) {
			return nil, apperrors.NewNotFoundError("Feedback")
		}
		return nil, apperrors.InternalError(err)
	}

	request, err := s.requestRepo.FindByID(db, feedback.RoastRequestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Фидбек видят только две стороны сделки.
	if requesterID != feedback.RoasterID && requesterID != request.CreatorID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	response := buildFeedbackResponse(feedback)
	return &response, nil
}

func (s *FeedbackServiceImpl) ListForRequest(db *gorm.DB, requestID, requesterID string) ([]dto.FeedbackResponse, error) {
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

	feedbacks, err := s.feedbackRepo.ListByRequest(db, requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.FeedbackResponse, 0, len(feedbacks))
	for i := range feedbacks {
		responses = append(responses, buildFeedbackResponse(&feedbacks[i]))
	}
	return responses, nil
}

func (s *FeedbackServiceImpl) ListForRoaster(db *gorm.DB, roasterID string) ([]dto.FeedbackResponse, error) {
	feedbacks, err := s.feedbackRepo.ListByRoaster(db, roasterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.FeedbackResponse, 0, len(feedbacks))
	for i := range feedbacks {
		responses = append(responses, buildFeedbackResponse(&feedbacks[i]))
	}
	return responses, nil
}

func buildFeedbackResponse(feedback *models.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:             feedback.ID,
		RoastRequestID: feedback.RoastRequestID,
		RoasterID:      feedback.RoasterID,
		Status:         feedback.Status,
		Content:        feedback.Content,
		FinalPrice:     feedback.FinalPrice,
		CreatorRating:  feedback.CreatorRating,
		SubmittedAt:    feedback.SubmittedAt,
		CompletedAt:    feedback.CompletedAt,
		CreatedAt:      feedback.CreatedAt,
	}
}
