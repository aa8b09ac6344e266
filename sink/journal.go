package sink

import (
	"time"

	"github.com/tejiriaustin/filemonitor/db"
	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/models"
)

// JournalSink appends every event to the event journal. Insert failures are
// logged and dropped.
type JournalSink struct {
	repo   db.Repository
	logger *logger.Logger
	now    func() time.Time
}

func NewJournalSink(repo db.Repository, logger *logger.Logger) *JournalSink {
	return &JournalSink{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *JournalSink) Emit(event models.Event) {
	fileEvent := models.FileEvent{
		Path:      event.Path,
		Operation: event.Operation,
		Timestamp: s.now(),
	}
	if _, err := s.repo.InsertFileEvent(fileEvent); err != nil {
		s.logger.Errorw("Error inserting event into journal", "path", event.Path, "error", err)
	}
}
