package services

import (
	"net/http"
	"testing"

	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/services/dto"
	"roastmyapp_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequestService() RequestService {
	return NewRequestService(
		repositories.NewRequestRepository(),
		repositories.NewApplicationRepository(),
		repositories.NewSelectionTaskRepository(),
		repositories.NewProfileRepository(),
	)
}

func createRequestPayload(mode models.FeedbackMode, questions []string, roasters int) *dto.CreateRequestRequest {
	return &dto.CreateRequestRequest{
		Title:              "Roast my landing page",
		Description:        "Fresh SaaS landing, honest feedback wanted",
		AppURL:             "https://example.io",
		FocusAreas:         []string{"ux", "pricing"},
		FeedbackMode:       mode,
		Questions:          questions,
		FeedbacksRequested: roasters,
	}
}

func TestCreatePersistsFixedPricing(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	creator := createTestCreator(t, db, "creator@test.io")

	// 5 вопросов = 3 бесплатных + 2 по 100.
	questions := []string{"q1", "q2", "q3", "q4", "q5"}
	response, err := svc.Create(db, creator.ID, createRequestPayload(models.FeedbackModeTargeted, questions, 2))
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusOpen, response.Status)
	assert.Equal(t, 700, response.PricePerRoaster)
	assert.Equal(t, 1400, response.TotalPrice)
	assert.Equal(t, 2, response.SlotsRemaining)
	require.NotNil(t, response.Pricing)
	assert.Equal(t, 1400, response.Pricing.GrandTotal)

	// Цена зафиксирована в строке запроса, а не считается на чтении.
	var stored models.RoastRequest
	require.NoError(t, db.First(&stored, "id = ?", response.ID).Error)
	assert.Equal(t, 700, stored.PricePerRoaster)
	assert.Equal(t, 1400, stored.TotalPrice)
	assert.ElementsMatch(t, questions, stored.GetQuestions())
}

func TestCreateFreeModeDropsQuestions(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	creator := createTestCreator(t, db, "creator@test.io")

	response, err := svc.Create(db, creator.ID, createRequestPayload(models.FeedbackModeFree, []string{"ignored"}, 3))
	require.NoError(t, err)

	assert.Equal(t, 0, response.PricePerRoaster)
	assert.Equal(t, 0, response.TotalPrice)
	assert.Empty(t, response.Questions)

	var stored models.RoastRequest
	require.NoError(t, db.First(&stored, "id = ?", response.ID).Error)
	assert.Empty(t, stored.GetQuestions())
}

func TestCreateWithoutCreatorProfileFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	user := createTestUser(t, db, "bare@test.io", models.UserRoleCreator)

	_, err := svc.Create(db, user.ID, createRequestPayload(models.FeedbackModeTargeted, nil, 1))
	assert.ErrorIs(t, err, apperrors.ErrProfileRequired)
}

func TestCreateTooManyQuestionsFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	creator := createTestCreator(t, db, "creator@test.io")

	questions := make([]string, 11) // лимит targeted - 10
	_, err := svc.Create(db, creator.ID, createRequestPayload(models.FeedbackModeTargeted, questions, 1))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestGetIncrementsViewsForNonOwnerOnly(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	creator := createTestCreator(t, db, "creator@test.io")
	visitor := createTestUser(t, db, "visitor@test.io", models.UserRoleRoaster)
	request := createTestRequest(t, db, creator.ID, 2)

	// Просмотр владельцем счетчик не трогает.
	_, err := svc.Get(db, request.ID, creator.ID)
	require.NoError(t, err)

	// Чужой просмотр пишется тем же хендлом БД, до возврата из Get.
	_, err = svc.Get(db, request.ID, visitor.ID)
	require.NoError(t, err)

	var stored models.RoastRequest
	require.NoError(t, db.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, 1, stored.Views)
}

func TestUpdateClosedRequestFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	creator := createTestCreator(t, db, "creator@test.io")
	request := createTestRequest(t, db, creator.ID, 2)
	require.NoError(t, db.Model(request).Update("status", models.RequestStatusCollecting).Error)

	title := "New title"
	err := svc.Update(db, request.ID, creator.ID, &dto.UpdateRequestRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
}

func TestCancelRejectsPendingAndClosesTask(t *testing.T) {
	db := openTestDB(t)
	requestSvc := newTestRequestService()
	appSvc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	summary := applyAs(t, db, appSvc, request.ID, roaster.ID)

	require.NoError(t, requestSvc.Cancel(db, request.ID, creator.ID))

	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusCancelled, updated.Status)

	var app models.RoastApplication
	require.NoError(t, db.First(&app, "id = ?", summary.ID).Error)
	assert.Equal(t, models.ApplicationStatusRejected, app.Status)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.NotNil(t, task.ProcessedAt)
}

func TestCancelTwiceFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestRequestService()

	creator := createTestCreator(t, db, "creator@test.io")
	request := createTestRequest(t, db, creator.ID, 1)

	require.NoError(t, svc.Cancel(db, request.ID, creator.ID))

	err := svc.Cancel(db, request.ID, creator.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
}

func TestQuoteMatchesCreatePricing(t *testing.T) {
	openTestDB(t) // инициализирует тестовый конфиг
	svc := newTestRequestService()

	breakdown, err := svc.Quote(&dto.PricingQuoteRequest{
		FeedbackMode:  string(models.FeedbackModeStructured),
		QuestionCount: 0,
		RoasterCount:  3,
		IsUrgent:      true,
	})
	require.NoError(t, err)

	// structured base 1500 + срочность 500, три ростера.
	assert.Equal(t, 2000, breakdown.PerRoasterTotal)
	assert.Equal(t, 6000, breakdown.GrandTotal)
}
