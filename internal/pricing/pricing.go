package pricing

import (
	"errors"

	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/models"
)

var (
	ErrUnknownMode      = errors.New("unknown feedback mode")
	ErrNegativeQuantity = errors.New("question and roaster counts cannot be negative")
	ErrNoRoasters       = errors.New("at least one roaster is required")
	ErrTooManyQuestions = errors.New("question count exceeds the mode limit")
)

// Breakdown - расшифровка стоимости запроса. Все суммы в центах.
type Breakdown struct {
	Mode              models.FeedbackMode `json:"mode"`
	BasePrice         int                 `json:"base_price"`
	BillableQuestions int                 `json:"billable_questions"`
	QuestionsPrice    int                 `json:"questions_price"`
	UrgencySurcharge  int                 `json:"urgency_surcharge"`
	PerRoasterTotal   int                 `json:"per_roaster_total"`
	RoasterCount      int                 `json:"roaster_count"`
	GrandTotal        int                 `json:"grand_total"`
}

// Calculate - чистая функция расчета стоимости. Без побочных эффектов,
// результат зависит только от аргументов; безопасна для конкурентных вызовов.
func Calculate(
	table config.PricingConfig,
	mode models.FeedbackMode,
	questionCount int,
	roasterCount int,
	isUrgent bool,
) (*Breakdown, error) {
	if questionCount < 0 || roasterCount < 0 {
		return nil, ErrNegativeQuantity
	}
	if roasterCount == 0 {
		return nil, ErrNoRoasters
	}

	modeCfg, err := modeConfig(table, mode)
	if err != nil {
		return nil, err
	}

	// FREE игнорирует вопросы полностью, в том числе лимит.
	if mode == models.FeedbackModeFree {
		questionCount = 0
	}

	if modeCfg.MaxQuestions >= 0 && questionCount > modeCfg.MaxQuestions {
		return nil, ErrTooManyQuestions
	}

	billable := questionCount - modeCfg.FreeQuestions
	if billable < 0 {
		billable = 0
	}

	questionsPrice := billable * modeCfg.QuestionPrice

	surcharge := 0
	if isUrgent {
		surcharge = table.UrgencySurcharge
	}

	perRoaster := modeCfg.BasePrice + questionsPrice + surcharge

	return &Breakdown{
		Mode:              mode,
		BasePrice:         modeCfg.BasePrice,
		BillableQuestions: billable,
		QuestionsPrice:    questionsPrice,
		UrgencySurcharge:  surcharge,
		PerRoasterTotal:   perRoaster,
		RoasterCount:      roasterCount,
		GrandTotal:        perRoaster * roasterCount,
	}, nil
}

func modeConfig(table config.PricingConfig, mode models.FeedbackMode) (config.PricingModeConfig, error) {
	switch mode {
	case models.FeedbackModeFree:
		return table.Free, nil
	case models.FeedbackModeTargeted:
		return table.Targeted, nil
	case models.FeedbackModeStructured:
		return table.Structured, nil
	default:
		return config.PricingModeConfig{}, ErrUnknownMode
	}
}
