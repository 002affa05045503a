package services

import (
	"fmt"
	"testing"
	"time"

	"roastmyapp_backend/internal/models"
	"roastmyapp_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSelectionService() SelectionService {
	return NewSelectionService(
		repositories.NewRequestRepository(),
		repositories.NewApplicationRepository(),
		repositories.NewFeedbackRepository(),
		repositories.NewSelectionTaskRepository(),
	)
}

// seedCollectingRequest готовит запрос в наборе заявок с уже просроченной
// задачей авто-выбора.
func seedCollectingRequest(t *testing.T, db *gorm.DB, creatorID string, slots int, dueAt time.Time) *models.RoastRequest {
	t.Helper()
	request := createTestRequest(t, db, creatorID, slots)
	require.NoError(t, db.Model(request).Updates(map[string]interface{}{
		"status":             models.RequestStatusCollecting,
		"selection_deadline": dueAt,
	}).Error)
	require.NoError(t, db.Create(&models.SelectionTask{
		RoastRequestID: request.ID,
		DueAt:          dueAt,
	}).Error)
	return request
}

func seedApplication(t *testing.T, db *gorm.DB, requestID, roasterID string, score int, createdAt time.Time) *models.RoastApplication {
	t.Helper()
	app := &models.RoastApplication{
		RoastRequestID: requestID,
		RoasterID:      roasterID,
		Status:         models.ApplicationStatusPending,
		Score:          score,
	}
	app.CreatedAt = createdAt
	require.NoError(t, db.Create(app).Error)
	return app
}

func TestSweepAutoSelectsTopRanked(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	dueAt := time.Now().Add(-time.Minute)
	request := seedCollectingRequest(t, db, creator.ID, 2, dueAt)

	base := dueAt.Add(-time.Hour)
	scores := []int{90, 70, 85, 60, 95}
	apps := make([]*models.RoastApplication, 0, len(scores))
	for i, score := range scores {
		roaster := createTestRoaster(t, db, fmt.Sprintf("roaster%d@test.io", i), []string{"ux"}, models.ExperienceMiddle)
		apps = append(apps, seedApplication(t, db, request.ID, roaster.ID, score, base.Add(time.Duration(i)*time.Minute)))
	}

	report, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TasksDue)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 2, report.AutoSelected)
	assert.Equal(t, 0, report.Failed)

	// Выбраны два лучших скора: 95 и 90, остальные отклонены.
	wantStatus := map[int]models.ApplicationStatus{
		95: models.ApplicationStatusAutoSelected,
		90: models.ApplicationStatusAutoSelected,
		85: models.ApplicationStatusRejected,
		70: models.ApplicationStatusRejected,
		60: models.ApplicationStatusRejected,
	}
	for _, app := range apps {
		var got models.RoastApplication
		require.NoError(t, db.First(&got, "id = ?", app.ID).Error)
		assert.Equal(t, wantStatus[app.Score], got.Status, "score %d", app.Score)
		if got.Status == models.ApplicationStatusAutoSelected {
			require.NotNil(t, got.SelectedAt)
			assert.WithinDuration(t, dueAt, *got.SelectedAt, time.Second)

			var feedback models.Feedback
			require.NoError(t, db.First(&feedback, "application_id = ?", app.ID).Error)
			assert.Equal(t, models.FeedbackStatusDraft, feedback.Status)
			assert.Equal(t, request.PricePerRoaster, feedback.FinalPrice)
		}
	}

	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.NotNil(t, task.ProcessedAt)
}

func TestSweepTieBreaksOnEarlierApplication(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	dueAt := time.Now().Add(-time.Minute)
	request := seedCollectingRequest(t, db, creator.ID, 1, dueAt)

	early := createTestRoaster(t, db, "early@test.io", []string{"ux"}, models.ExperienceMiddle)
	late := createTestRoaster(t, db, "late@test.io", []string{"ux"}, models.ExperienceMiddle)

	earlyApp := seedApplication(t, db, request.ID, early.ID, 80, dueAt.Add(-2*time.Hour))
	lateApp := seedApplication(t, db, request.ID, late.ID, 80, dueAt.Add(-time.Hour))

	_, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)

	var winner, loser models.RoastApplication
	require.NoError(t, db.First(&winner, "id = ?", earlyApp.ID).Error)
	require.NoError(t, db.First(&loser, "id = ?", lateApp.ID).Error)
	assert.Equal(t, models.ApplicationStatusAutoSelected, winner.Status)
	assert.Equal(t, models.ApplicationStatusRejected, loser.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	dueAt := time.Now().Add(-time.Minute)
	request := seedCollectingRequest(t, db, creator.ID, 1, dueAt)

	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	seedApplication(t, db, request.ID, roaster.ID, 75, dueAt.Add(-time.Hour))

	first, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AutoSelected)

	second, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TasksDue)
	assert.Equal(t, 0, second.AutoSelected)

	var feedbackCount int64
	require.NoError(t, db.Model(&models.Feedback{}).Where("roast_request_id = ?", request.ID).Count(&feedbackCount).Error)
	assert.EqualValues(t, 1, feedbackCount)
}

func TestSweepPartialStaffingLeavesRequestCollecting(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	dueAt := time.Now().Add(-time.Minute)
	request := seedCollectingRequest(t, db, creator.ID, 2, dueAt)

	roaster := createTestRoaster(t, db, "roaster@test.io", []string{"ux"}, models.ExperienceMiddle)
	app := seedApplication(t, db, request.ID, roaster.ID, 80, dueAt.Add(-time.Hour))

	report, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, report.AutoSelected)

	var got models.RoastApplication
	require.NoError(t, db.First(&got, "id = ?", app.ID).Error)
	assert.Equal(t, models.ApplicationStatusAutoSelected, got.Status)

	// Занят один слот из двух: владелец еще может добрать вручную,
	// запрос не уходит в in_progress.
	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusCollecting, updated.Status)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.NotNil(t, task.ProcessedAt)
}

func TestSweepWithNoApplicationsLeavesRequestCollecting(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	request := seedCollectingRequest(t, db, creator.ID, 2, time.Now().Add(-time.Minute))

	report, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.AutoSelected)

	// Запрос ждет ручного решения владельца, но задача погашена.
	var updated models.RoastRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusCollecting, updated.Status)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.NotNil(t, task.ProcessedAt)
}

func TestSweepSkipsManuallyFilledRequest(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	dueAt := time.Now().Add(-time.Minute)
	request := seedCollectingRequest(t, db, creator.ID, 1, dueAt)
	require.NoError(t, db.Model(request).Update("status", models.RequestStatusInProgress).Error)

	report, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.AutoSelected)

	var task models.SelectionTask
	require.NoError(t, db.First(&task, "roast_request_id = ?", request.ID).Error)
	assert.NotNil(t, task.ProcessedAt)
}

func TestSweepIgnoresFutureTasks(t *testing.T) {
	db := openTestDB(t)
	svc := newTestSelectionService()

	creator := createTestCreator(t, db, "creator@test.io")
	seedCollectingRequest(t, db, creator.ID, 1, time.Now().Add(time.Hour))

	report, err := svc.ProcessDueTasks(db, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TasksDue)
}
