package sink

import (
	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/models"
)

type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(logger *logger.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(event models.Event) {
	s.logger.Info(event.Message())
}
