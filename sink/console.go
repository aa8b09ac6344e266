package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/tejiriaustin/filemonitor/models"
)

type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Emit(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, event.Message())
}
