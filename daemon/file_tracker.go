package daemon

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejiriaustin/filemonitor/config"
	"github.com/tejiriaustin/filemonitor/db"
	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/monitoring"
	"github.com/tejiriaustin/filemonitor/sink"
)

// FileTracker owns the monitor and every event destination built from the
// configuration.
type FileTracker struct {
	config  *config.Config
	logger  *logger.Logger
	monitor *monitoring.DirectorySnapshotMonitor
	journal *db.Client
	metrics *sink.Metrics
}

func NewFileTracker(cfg *config.Config, log *logger.Logger, console io.Writer, reg prometheus.Registerer, opts ...monitoring.Options) (*FileTracker, error) {
	ft := &FileTracker{
		config:  cfg,
		logger:  log,
		metrics: sink.NewMetrics(reg),
	}

	sinks := []monitoring.EventSink{
		sink.NewLogSink(log),
		sink.NewConsoleSink(console),
		ft.metrics,
	}

	if cfg.JournalPath != "" {
		journal, err := db.NewClient(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open event journal: %w", err)
		}
		if err := journal.CreateFileEventsTable(); err != nil {
			journal.Close()
			return nil, fmt.Errorf("failed to create file events table: %w", err)
		}
		ft.journal = journal
		sinks = append(sinks, sink.NewJournalSink(journal, log))
	}

	monitorOpts := []monitoring.Options{
		monitoring.WithExclusions(cfg.ExcludedPaths()...),
		monitoring.WithInterval(cfg.Interval),
		monitoring.WithLogger(log),
		monitoring.WithCycleHook(ft.metrics.ObserveCycle),
	}
	monitorOpts = append(monitorOpts, opts...)

	monitor, err := monitoring.New(cfg.Directory, sink.NewMulti(sinks...), monitorOpts...)
	if err != nil {
		ft.Close()
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	ft.monitor = monitor

	return ft, nil
}

func (ft *FileTracker) Monitor() *monitoring.DirectorySnapshotMonitor {
	return ft.monitor
}

// Journal returns the event journal, or nil when journaling is disabled.
func (ft *FileTracker) Journal() db.Repository {
	if ft.journal == nil {
		return nil
	}
	return ft.journal
}

func (ft *FileTracker) Close() error {
	if ft.journal != nil {
		if err := ft.journal.Close(); err != nil {
			return fmt.Errorf("failed to close event journal: %w", err)
		}
		ft.journal = nil
	}
	return nil
}
