package services

import (
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

func newTestApplicationService() ApplicationService {
	return NewApplicationService(
		repositories.NewRequestRepository(),
		repositories.NewApplicationRepository(),
		repositories.NewProfileRepository(),
		repositories.NewFeedbackRepository(),
		repositories.NewSelectionTaskRepository(),
	)
}

func applyAs(t *testing.T, db *gorm.DB, svc ApplicationService, requestID, roasterID string) *dto.ApplicationSummary {
	t.Helper()
	summary, err := svc.Apply(db, requestID, roasterID, &dto.ApplyRequest{})
	require.NoError(t, err)
	return summary
}

func TestApplyCreatesPendingApplicationWithScore(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux", "onboarding"}, models.ExperienceSenior)
	request := createTestRequest(t, db, creator.ID, 2)

	summary := applyAs(t, db, svc, request.ID, roaster.ID)

	assert.Equal(t, models.ApplicationStatusPending, summary.Status)
	assert.Greater(t, summary.Score, 0)
	assert.NotEmpty(t, summary.Reasons)
	assert.Nil(t, summary.SelectedAt)
}

func TestFirstApplicationOpensSelectionWindow(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	before := time.Now()
	applyAs(t, db, svc, request.ID, roaster.ID)

	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusCollecting, updated.Status)
	require.NotNil(t, updated.SelectionDeadline)

	// Дедлайн = момент подачи + 24 часа.
	expected := before.Add(24 * time.Hour)
	assert.WithinDuration(t, expected, *updated.SelectionDeadline, 5*time.Second)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.Nil(t, task.ProcessedAt)
	assert.WithinDuration(t, *updated.SelectionDeadline, task.DueAt, time.Second)
}

func TestSecondApplicationKeepsExistingWindow(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	first := createTestRoaster(t, db, "first@test.io", []string{"ux"}, models.ExperienceMiddle)
	second := createTestRoaster(t, db, "second@test.io", []string{"pricing"}, models.ExperienceJunior)
	request := createTestRequest(t, db, creator.ID, 2)

	applyAs(t, db, svc, request.ID, first.ID)

	var afterFirst models.RoastRequest
	require.NoError(t, db.First(&afterFirst, "id = ?", request.ID).Error)

	applyAs(t, db, svc, request.ID, second.ID)

	var afterSecond models.RoastRequest
	require.NoError(t, db.First(&afterSecond, "id = ?", request.ID).Error)
	assert.Equal(t, *afterFirst.SelectionDeadline, *afterSecond.SelectionDeadline)

	var taskCount int64
	require.NoError(t, db.Model(&models.SelectionTask{}).Where("roast_request_id = ?", request.ID).Count(&taskCount).Error)
	assert.EqualValues(t, 1, taskCount)
}

func TestApplyToOwnRequestFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	// У создателя есть и ростерский профиль - владение запросом все равно
	// блокирует подачу.
	require.NoError(t, db.Create(&models.RoasterProfile{
		UserID:          creator.ID,
		DisplayName:     "Self",
		ExperienceLevel: models.ExperienceJunior,
	}).Error)
	request := createTestRequest(t, db, creator.ID, 2)

	_, err := svc.Apply(db, request.ID, creator.ID, &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrCannotApplyToOwnRequest)
}

func TestApplyTwiceFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	applyAs(t, db, svc, request.ID, roaster.ID)

	_, err := svc.Apply(db, request.ID, roaster.ID, &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
}

func TestApplyAfterWithdrawStillFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	summary := applyAs(t, db, svc, request.ID, roaster.ID)
	require.NoError(t, svc.Withdraw(db, summary.ID, roaster.ID))

	// Отозванная заявка терминальна и продолжает занимать пару
	// (ростер, запрос): повторная подача невозможна.
	_, err := svc.Apply(db, request.ID, roaster.ID, &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
}

func TestApplyWithoutRoasterProfileFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	user := createTestUser(t, db, "noprofile@test.io", models.UserRoleRoaster)
	request := createTestRequest(t, db, creator.ID, 2)

	_, err := svc.Apply(db, request.ID, user.ID, &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrProfileRequired)
}

func TestApplyToClosedRequestFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	require.NoError(t, db.Model(request).Update("status", models.RequestStatusCancelled).Error)

	_, err := svc.Apply(db, request.ID, roaster.ID, &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrRequestClosed)
}

func TestSelectFillsSlotAndCreatesDraftFeedback(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	summary := applyAs(t, db, svc, request.ID, roaster.ID)
	require.NoError(t, svc.Select(db, summary.ID, creator.ID))

	var app models.RoastApplication
	require.NoError(t, db.First(&app, "id = ?", summary.ID).Error)
	assert.Equal(t, models.ApplicationStatusAccepted, app.Status)
	assert.NotNil(t, app.SelectedAt)

	var feedback models.Feedback
	require.NoError(t, db.First(&feedback, "application_id = ?", summary.ID).Error)
	assert.Equal(t, models.FeedbackStatusDraft, feedback.Status)
	assert.Equal(t, roaster.ID, feedback.RoasterID)
	assert.Equal(t, 500, feedback.FinalPrice)

	// Один из двух слотов занят - набор продолжается.
	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusCollecting, updated.Status)
}

func TestSelectLastSlotFinalizesRequest(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	winner := createTestRoaster(t, db, "winner@test.io", []string{"ux"}, models.ExperienceSenior)
	loser := createTestRoaster(t, db, "loser@test.io", []string{"pricing"}, models.ExperienceJunior)
	request := createTestRequest(t, db, creator.ID, 1)

	winning := applyAs(t, db, svc, request.ID, winner.ID)
	losing := applyAs(t, db, svc, request.ID, loser.ID)

	require.NoError(t, svc.Select(db, winning.ID, creator.ID))

	var rejected models.RoastApplication
	require.NoError(t, db.First(&rejected, "id = ?", losing.ID).Error)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)

	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.NotNil(t, task.ProcessedAt)
}

func TestSelectByNonOwnerFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	intruder := createTestCreator(t, db, "intruder@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 1)

	summary := applyAs(t, db, svc, request.ID, roaster.ID)

	err := svc.Select(db, summary.ID, intruder.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestSelectDecidedApplicationFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	summary := applyAs(t, db, svc, request.ID, roaster.ID)
	require.NoError(t, svc.Select(db, summary.ID, creator.ID))

	err := svc.Select(db, summary.ID, creator.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationDecided)
}

func TestWithdrawByOtherRoasterFails(t *testing.T) {
	db := openTestDB(t)
	svc := newTestApplicationService()

	creator := createTestCreator(t, db, "creator@test.io")
	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	other := createTestRoaster(t, db, "other@test.io", []string{"ux"}, models.ExperienceMiddle)
	request := createTestRequest(t, db, creator.ID, 2)

	summary := applyAs(t, db, svc, request.ID, roaster.ID)

	err := svc.Withdraw(db, summary.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}
