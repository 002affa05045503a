package workers

import (
	"fmt"
	"time"

	"roastmyapp_backend/internal/logger"
	"roastmyapp_backend/internal/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// sweepBatchLimit ограничивает число задач за один тик воркера.
const sweepBatchLimit = 100

// SelectionWorker периодически обрабатывает просроченные задачи авто-выбора.
// Расписание задается 5-польным cron-выражением из конфига. Задачи
// персистентны: рестарт процесса ничего не теряет, следующий тик подберет
// все дедлайны, наступившие за время простоя.
type SelectionWorker struct {
	db               *gorm.DB
	selectionService services.SelectionService
	cron             *cron.Cron
}

func NewSelectionWorker(db *gorm.DB, selectionService services.SelectionService) *SelectionWorker {
	return &SelectionWorker{
		db:               db,
		selectionService: selectionService,
		cron:             cron.New(),
	}
}

// Start запускает воркер по расписанию и сразу делает первый проход,
// чтобы дедлайны, просроченные за время простоя, не ждали первого тика.
func (w *SelectionWorker) Start(spec string) error {
	if _, err := w.cron.AddFunc(spec, w.tick); err != nil {
		return fmt.Errorf("invalid sweep cron spec %q: %w", spec, err)
	}

	go w.tick()

	w.cron.Start()
	logger.Info("selection worker started", "schedule", spec)
	return nil
}

// Stop останавливает расписание и дожидается завершения текущего прохода.
func (w *SelectionWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	logger.Info("selection worker stopped")
}

func (w *SelectionWorker) tick() {
	report, err := w.selectionService.ProcessDueTasks(w.db, time.Now(), sweepBatchLimit)
	if err != nil {
		logger.WorkerLog("selection", "sweep", err)
		return
	}
	if report.TasksDue > 0 {
		logger.Info("selection sweep tick",
			"due", report.TasksDue,
			"processed", report.Processed,
			"auto_selected", report.AutoSelected,
			"failed", report.Failed,
		)
	}
}
