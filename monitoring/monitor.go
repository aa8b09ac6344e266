package monitoring

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/models"
)

const DefaultInterval = time.Second

type (
	// DirectorySnapshotMonitor polls one directory level and reports the
	// differences between consecutive listings as events. It is driven by a
	// single goroutine and is not safe for concurrent use.
	DirectorySnapshotMonitor struct {
		directory string
		exclude   ExclusionSet
		interval  time.Duration
		snapshot  Snapshot
		state     State

		lister  DirectoryLister
		sink    EventSink
		clock   Clock
		logger  *logger.Logger
		onCycle func(CycleResult)
	}

	CycleResult struct {
		Updated int
		Created int
		Deleted int
		Tracked int
	}

	Options func(*DirectorySnapshotMonitor) error
)

func (r CycleResult) Changes() int {
	return r.Updated + r.Created + r.Deleted
}

func WithExclusions(paths ...string) Options {
	return func(m *DirectorySnapshotMonitor) error {
		m.exclude = NewExclusionSet(paths...)
		return nil
	}
}

func WithInterval(interval time.Duration) Options {
	return func(m *DirectorySnapshotMonitor) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}
		m.interval = interval
		return nil
	}
}

func WithLister(lister DirectoryLister) Options {
	return func(m *DirectorySnapshotMonitor) error {
		m.lister = lister
		return nil
	}
}

func WithClock(clock Clock) Options {
	return func(m *DirectorySnapshotMonitor) error {
		m.clock = clock
		return nil
	}
}

func WithLogger(log *logger.Logger) Options {
	return func(m *DirectorySnapshotMonitor) error {
		m.logger = log
		return nil
	}
}

// WithCycleHook registers fn to be called after every successful cycle.
func WithCycleHook(fn func(CycleResult)) Options {
	return func(m *DirectorySnapshotMonitor) error {
		m.onCycle = fn
		return nil
	}
}

// New builds a monitor for directory. The directory is not touched until
// InitializeTimestamps or RunCycle is called.
func New(directory string, sink EventSink, opts ...Options) (*DirectorySnapshotMonitor, error) {
	if directory == "" {
		return nil, fmt.Errorf("%w: directory must not be empty", ErrConfiguration)
	}
	if sink == nil {
		return nil, errors.New("event sink is required")
	}

	m := &DirectorySnapshotMonitor{
		directory: directory,
		exclude:   NewExclusionSet(),
		interval:  DefaultInterval,
		snapshot:  make(Snapshot),
		state:     StateUninitialized,
		lister:    NewOSLister(),
		sink:      sink,
		clock:     NewClock(),
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DirectorySnapshotMonitor) Directory() string       { return m.directory }
func (m *DirectorySnapshotMonitor) Interval() time.Duration { return m.interval }
func (m *DirectorySnapshotMonitor) State() State            { return m.state }

// Snapshot returns a copy of the recorded modification times.
func (m *DirectorySnapshotMonitor) Snapshot() Snapshot {
	return m.snapshot.Clone()
}

// InitializeTimestamps records every entry of the directory, directories and
// excluded paths included. On failure the snapshot keeps whatever was
// recorded and an *InitializationError is returned; monitoring may proceed.
// Only an uninitialized monitor moves to StateReady.
func (m *DirectorySnapshotMonitor) InitializeTimestamps(ctx context.Context) error {
	defer func() {
		if m.state == StateUninitialized {
			m.state = StateReady
		}
	}()

	entries, err := m.lister.List(ctx, m.directory)
	if err != nil {
		return &InitializationError{Err: err}
	}
	for _, entry := range entries {
		m.snapshot[entry.Path] = entry.ModTime
	}

	m.logger.Debugw("Initialized timestamps", "directory", m.directory, "tracked", len(m.snapshot), "excluded", m.exclude.Len())
	return nil
}

// RunCycle lists the directory once and runs the update, creation and
// deletion passes over that listing, in that order.
func (m *DirectorySnapshotMonitor) RunCycle(ctx context.Context) (CycleResult, error) {
	entries, err := m.lister.List(ctx, m.directory)
	if err != nil {
		return CycleResult{}, err
	}

	var result CycleResult
	result.Updated = m.detectUpdates(entries)
	result.Created = m.detectCreations(entries)
	result.Deleted = m.detectDeletions(entries)
	result.Tracked = len(m.snapshot)

	if result.Changes() > 0 {
		m.logger.Debugw("Cycle complete",
			"updated", result.Updated,
			"created", result.Created,
			"deleted", result.Deleted,
			"tracked", result.Tracked,
		)
	}
	if m.onCycle != nil {
		m.onCycle(result)
	}
	return result, nil
}

func (m *DirectorySnapshotMonitor) detectUpdates(entries []DirectoryEntry) int {
	count := 0
	for _, entry := range entries {
		if m.exclude.Excludes(entry) {
			continue
		}
		recorded, ok := m.snapshot.Lookup(entry.Path)
		if !ok || recorded == entry.ModTime {
			continue
		}
		m.sink.Emit(models.Updated(entry.Path))
		m.snapshot[entry.Path] = entry.ModTime
		count++
	}
	return count
}

func (m *DirectorySnapshotMonitor) detectCreations(entries []DirectoryEntry) int {
	count := 0
	for _, entry := range entries {
		if m.exclude.Excludes(entry) {
			continue
		}
		if _, ok := m.snapshot.Lookup(entry.Path); ok {
			continue
		}
		m.sink.Emit(models.Created(entry.Path))
		m.snapshot[entry.Path] = entry.ModTime
		count++
	}
	return count
}

// detectDeletions is not filtered by the exclusion set: an excluded path
// recorded by InitializeTimestamps is still reported when it disappears.
func (m *DirectorySnapshotMonitor) detectDeletions(entries []DirectoryEntry) int {
	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[entry.Path] = struct{}{}
	}

	var gone []string
	for path := range m.snapshot {
		if _, ok := present[path]; !ok {
			gone = append(gone, path)
		}
	}
	slices.Sort(gone)

	for _, path := range gone {
		m.sink.Emit(models.Deleted(path))
		delete(m.snapshot, path)
	}
	return len(gone)
}

// Run alternates RunCycle and a sleep of the configured interval until ctx is
// cancelled, returning ErrInterrupted, or a cycle fails, returning a
// *MonitoringError. Failed cycles are not retried.
func (m *DirectorySnapshotMonitor) Run(ctx context.Context) error {
	m.state = StateRunning
	defer func() { m.state = StateStopped }()

	for {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		if _, err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			return &MonitoringError{Err: err}
		}

		if err := m.clock.Sleep(ctx, m.interval); err != nil {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			return &MonitoringError{Err: err}
		}
	}
}
