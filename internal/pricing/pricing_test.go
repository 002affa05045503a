package pricing

import (
	"testing"

	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() config.PricingConfig {
	return config.PricingConfig{
		Free:             config.PricingModeConfig{BasePrice: 0, FreeQuestions: 0, QuestionPrice: 0, MaxQuestions: 0},
		Targeted:         config.PricingModeConfig{BasePrice: 500, FreeQuestions: 3, QuestionPrice: 100, MaxQuestions: 10},
		Structured:       config.PricingModeConfig{BasePrice: 1500, FreeQuestions: 5, QuestionPrice: 200, MaxQuestions: 20},
		UrgencySurcharge: 500,
	}
}

func TestCalculateFreeMode(t *testing.T) {
	table := testTable()

	b, err := Calculate(table, models.FeedbackModeFree, 0, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 0, b.PerRoasterTotal)
	assert.Equal(t, 0, b.GrandTotal)

	// Вопросы в FREE игнорируются: результат идентичен нулю вопросов.
	withQuestions, err := Calculate(table, models.FeedbackModeFree, 5, 3, false)
	require.NoError(t, err)
	assert.Equal(t, b, withQuestions)
}

func TestCalculateTargetedWithinFreeQuestions(t *testing.T) {
	b, err := Calculate(testTable(), models.FeedbackModeTargeted, 3, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 0, b.BillableQuestions)
	assert.Equal(t, 500, b.PerRoasterTotal)
	assert.Equal(t, 1000, b.GrandTotal)
}

func TestCalculateTargetedExtraQuestions(t *testing.T) {
	b, err := Calculate(testTable(), models.FeedbackModeTargeted, 7, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 4, b.BillableQuestions)
	assert.Equal(t, 400, b.QuestionsPrice)
	assert.Equal(t, 900, b.PerRoasterTotal)
	assert.Equal(t, 1800, b.GrandTotal)
}

func TestCalculateStructuredZeroQuestions(t *testing.T) {
	// Ноль вопросов - базовая цена режима без доплат.
	b, err := Calculate(testTable(), models.FeedbackModeStructured, 0, 3, false)
	require.NoError(t, err)

	assert.Equal(t, 0, b.BillableQuestions)
	assert.Equal(t, 1500, b.PerRoasterTotal)
	assert.Equal(t, 4500, b.GrandTotal)
}

func TestCalculateUrgencySurcharge(t *testing.T) {
	table := testTable()

	normal, err := Calculate(table, models.FeedbackModeStructured, 5, 2, false)
	require.NoError(t, err)

	urgent, err := Calculate(table, models.FeedbackModeStructured, 5, 2, true)
	require.NoError(t, err)

	assert.Equal(t, normal.PerRoasterTotal+500, urgent.PerRoasterTotal)
	assert.Equal(t, (normal.PerRoasterTotal+500)*2, urgent.GrandTotal)
}

func TestCalculateTooManyQuestions(t *testing.T) {
	_, err := Calculate(testTable(), models.FeedbackModeTargeted, 11, 1, false)
	assert.ErrorIs(t, err, ErrTooManyQuestions)
}

func TestCalculateInvalidInputs(t *testing.T) {
	table := testTable()

	_, err := Calculate(table, models.FeedbackModeTargeted, -1, 1, false)
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = Calculate(table, models.FeedbackModeTargeted, 0, 0, false)
	assert.ErrorIs(t, err, ErrNoRoasters)

	_, err = Calculate(table, models.FeedbackMode("premium"), 0, 1, false)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestCalculateIsDeterministic(t *testing.T) {
	table := testTable()

	first, err := Calculate(table, models.FeedbackModeStructured, 8, 5, true)
	require.NoError(t, err)
	second, err := Calculate(table, models.FeedbackModeStructured, 8, 5, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
