package monitoring

import (
	"context"
	"time"

	"github.com/tejiriaustin/filemonitor/models"
)

type (
	// DirectoryEntry is one item of a directory listing. It is only valid for
	// the cycle that produced it.
	DirectoryEntry struct {
		Path    string
		IsDir   bool
		ModTime int64
	}

	DirectoryLister interface {
		List(ctx context.Context, directory string) ([]DirectoryEntry, error)
	}

	// EventSink receives events in the order a cycle emits them. Delivery
	// failures are the sink's concern.
	EventSink interface {
		Emit(event models.Event)
	}

	// Clock suspends the loop between cycles. Sleep must return ctx.Err()
	// as soon as ctx is cancelled.
	Clock interface {
		Sleep(ctx context.Context, d time.Duration) error
	}

	EventSinkFunc func(event models.Event)
)

func (f EventSinkFunc) Emit(event models.Event) {
	f(event)
}

type State int

const (
	StateUninitialized State = iota
	StateReady
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
