package services

import (
	"strings"
	"testing"
	"time"

	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestFeedbackService() FeedbackService {
	return NewFeedbackService(
		repositories.NewFeedbackRepository(),
		repositories.NewRequestRepository(),
	)
}

// seedDraftFeedback готовит запрос в работе с выбранным ростером и черновиком
// фидбека, как после выбора заявки.
func seedDraftFeedback(t *testing.T, db *gorm.DB, creatorID, roasterID string) (*models.RoastRequest, *models.Feedback) {
	t.Helper()
	request := createTestRequest(t, db, creatorID, 1)
	require.NoError(t, db.Model(request).Update("status", models.RequestStatusInProgress).Error)

	now := time.Now()
	app := &models.RoastApplication{
		RoastRequestID: request.ID,
		RoasterID:      roasterID,
		Status:         models.ApplicationStatusAccepted,
		Score:          70,
		SelectedAt:     &now,
	}
	require.NoError(t, db.Create(app).Error)

	feedback := &models.Feedback{
		RoastRequestID: request.ID,
		ApplicationID:  app.ID,
		RoasterID:      roasterID,
		Status:         models.FeedbackStatusDraft,
		FinalPrice:     request.PricePerRoaster,
	}
	require.NoError(t, db.Create(feedback).Error)
	return request, feedback
}

func submitTestContent() *dto.SubmitFeedbackRequest {
	return &dto.SubmitFeedbackRequest{Content: strings.Repeat("The onboarding flow loses users at step two. ", 3)}
}

func TestSubmitMovesDraftToPending(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	require.NoError(t, svc.Submit(db, feedback.ID, roaster.ID, submitTestContent()))

	var got models.Feedback
	require.NoError(t, db.First(&got, "id = ?", feedback.ID).Error)
	assert.Equal(t, models.FeedbackStatusPending, got.Status)
	assert.NotEmpty(t, got.Content)
	assert.NotNil(t, got.SubmittedAt)
}

func TestSubmitByOtherRoasterFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	other := createTestRoaster(t, db, "other@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	err := svc.Submit(db, feedback.ID, other.ID, submitTestContent())
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestSubmitTwiceFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	require.NoError(t, svc.Submit(db, feedback.ID, roaster.ID, submitTestContent()))

	err := svc.Submit(db, feedback.ID, roaster.ID, submitTestContent())
	assert.ErrorIs(t, err, apperrors.ErrFeedbackNotEditable)
}

func TestCompleteLastFeedbackCompletesRequest(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	first := createTestRoaster(t, db, "first@test.io", []string{"ux"}, models.ExperienceMiddle)
	second := createTestRoaster(t, db, "second@test.io", []string{"ux"}, models.ExperienceMiddle)

	request, feedbackA := seedDraftFeedback(t, db, creator.ID, first.ID)

	// Второй выбранный ростер на том же запросе.
	now := time.Now()
	app := &models.RoastApplication{
		RoastRequestID: request.ID,
		RoasterID:      second.ID,
		Status:         models.ApplicationStatusAutoSelected,
		Score:          60,
		SelectedAt:     &now,
	}
	require.NoError(t, db.Create(app).Error)
	feedbackB := &models.Feedback{
		RoastRequestID: request.ID,
		ApplicationID:  app.ID,
		RoasterID:      second.ID,
		Status:         models.FeedbackStatusDraft,
		FinalPrice:     request.PricePerRoaster,
	}
	require.NoError(t, db.Create(feedbackB).Error)

	require.NoError(t, svc.Submit(db, feedbackA.ID, first.ID, submitTestContent()))
	require.NoError(t, svc.Submit(db, feedbackB.ID, second.ID, submitTestContent()))

	require.NoError(t, svc.Complete(db, feedbackA.ID, creator.ID))

	var afterFirst models.RoastRequest
	require.NoError(t, db.First(&afterFirst, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusInProgress, afterFirst.Status)

	require.NoError(t, svc.Complete(db, feedbackB.ID, creator.ID))

	var afterLast models.RoastRequest
	require.NoError(t, db.First(&afterLast, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusCompleted, afterLast.Status)

	var got models.Feedback
	require.NoError(t, db.First(&got, "id = ?", feedbackA.ID).Error)
	assert.Equal(t, models.FeedbackStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestCompleteByNonCreatorFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	require.NoError(t, svc.Submit(db, feedback.ID, roaster.ID, submitTestContent()))

	err := svc.Complete(db, feedback.ID, roaster.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestCompleteDraftFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	err := svc.Complete(db, feedback.ID, creator.ID)
	assert.ErrorIs(t, err, apperrors.ErrFeedbackNotEditable)
}

func TestRateCompletedFeedbackOnce(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	require.NoError(t, svc.Submit(db, feedback.ID, roaster.ID, submitTestContent()))
	require.NoError(t, svc.Complete(db, feedback.ID, creator.ID))

	require.NoError(t, svc.Rate(db, feedback.ID, creator.ID, &dto.RateFeedbackRequest{Rating: 4}))

	var got models.Feedback
	require.NoError(t, db.First(&got, "id = ?", feedback.ID).Error)
	require.NotNil(t, got.CreatorRating)
	assert.Equal(t, 4, *got.CreatorRating)
	assert.NotNil(t, got.RatedAt)

	err := svc.Rate(db, feedback.ID, creator.ID, &dto.RateFeedbackRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrFeedbackAlreadyRated)
}

func TestRatePendingFeedbackFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	require.NoError(t, svc.Submit(db, feedback.ID, roaster.ID, submitTestContent()))

	err := svc.Rate(db, feedback.ID, creator.ID, &dto.RateFeedbackRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrFeedbackNotCompleted)
}

func TestGetVisibleOnlyToParties(t *testing.T) {
	db := openTestDB(t)
	svc := newTestFeedbackService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	intruder := createTestRoaster(t, db, "intruder@test.io", []string{"ux"}, models.ExperienceMiddle)
	_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)

	for _, party := range []string{creator.ID, roaster.ID} {
		got, err := svc.Get(db, feedback.ID, party)
		require.NoError(t, err)
		assert.Equal(t, feedback.ID, got.ID)
	}

	_, err := svc.Get(db, feedback.ID, intruder.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestRoasterStatsAggregation(t *testing.T) {
	db := openTestDB(t)
	feedbackSvc := newTestFeedbackService()
	profileSvc := NewProfileService(repositories.NewProfileRepository())

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)

	// Два завершенных фидбека с оценками и один еще в работе.
	ratings := []int{4, 5}
	for _, rating := range ratings {
		_, feedback := seedDraftFeedback(t, db, creator.ID, roaster.ID)
		require.NoError(t, feedbackSvc.Submit(db, feedback.ID, roaster.ID, submitTestContent()))
		require.NoError(t, feedbackSvc.Complete(db, feedback.ID, creator.ID))
		require.NoError(t, feedbackSvc.Rate(db, feedback.ID, creator.ID, &dto.RateFeedbackRequest{Rating: rating}))
	}
	seedDraftFeedback(t, db, creator.ID, roaster.ID)

	stats, err := profileSvc.GetRoasterStats(db, roaster.ID)
	require.NoError(t, err)

	assert.InDelta(t, 4.5, stats.Rating, 0.001)
	assert.EqualValues(t, 2, stats.CompletedRoasts)
	assert.EqualValues(t, 3, stats.SelectedTotal)
	assert.InDelta(t, 2.0/3.0, stats.CompletionRate, 0.001)
	assert.EqualValues(t, 2*500, stats.TotalEarned)
	assert.Equal(t, models.RoasterLevelRookie, stats.Level)
}
