package monitoring

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/models"
)

type fakeLister struct {
	entries map[string]DirectoryEntry
	calls   int
}

func newFakeLister() *fakeLister {
	return &fakeLister{entries: make(map[string]DirectoryEntry)}
}

func (f *fakeLister) file(path string, modTime int64) {
	f.entries[path] = DirectoryEntry{Path: path, ModTime: modTime}
}

func (f *fakeLister) dir(path string, modTime int64) {
	f.entries[path] = DirectoryEntry{Path: path, IsDir: true, ModTime: modTime}
}

func (f *fakeLister) remove(path string) {
	delete(f.entries, path)
}

func (f *fakeLister) List(ctx context.Context, _ string) ([]DirectoryEntry, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]DirectoryEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b DirectoryEntry) int {
		if a.Path < b.Path {
			return -1
		}
		if a.Path > b.Path {
			return 1
		}
		return 0
	})
	return out, nil
}

type MockLister struct {
	mock.Mock
}

func (m *MockLister) List(ctx context.Context, directory string) ([]DirectoryEntry, error) {
	args := m.Called(directory)
	entries, _ := args.Get(0).([]DirectoryEntry)
	return entries, args.Error(1)
}

type recordingSink struct {
	events []models.Event
}

func (r *recordingSink) Emit(event models.Event) {
	r.events = append(r.events, event)
}

func messages(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Message())
	}
	return out
}

func (r *recordingSink) drain() []models.Event {
	events := r.events
	r.events = nil
	return events
}

// stepClock never blocks; onSleep runs before each sleep returns.
type stepClock struct {
	sleeps  int
	onSleep func(n int)
}

func (c *stepClock) Sleep(ctx context.Context, _ time.Duration) error {
	c.sleeps++
	if c.onSleep != nil {
		c.onSleep(c.sleeps)
	}
	return ctx.Err()
}

type MonitorTestSuite struct {
	suite.Suite
	lister  *fakeLister
	sink    *recordingSink
	clock   *stepClock
	monitor *DirectorySnapshotMonitor
}

func (s *MonitorTestSuite) SetupTest() {
	s.lister = newFakeLister()
	s.sink = &recordingSink{}
	s.clock = &stepClock{}
	s.monitor = s.newMonitor()
}

func (s *MonitorTestSuite) newMonitor(opts ...Options) *DirectorySnapshotMonitor {
	opts = append([]Options{WithLister(s.lister), WithClock(s.clock)}, opts...)
	m, err := New("dir", s.sink, opts...)
	s.Require().NoError(err)
	return m
}

func (s *MonitorTestSuite) cycle() []models.Event {
	_, err := s.monitor.RunCycle(context.Background())
	s.Require().NoError(err)
	return s.sink.drain()
}

func (s *MonitorTestSuite) TestScenario_UpdateCreateDelete() {
	s.lister.file("dir/a.txt", 100)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))
	s.Equal(Snapshot{"dir/a.txt": 100}, s.monitor.Snapshot())
	s.Equal(StateReady, s.monitor.State())

	s.lister.file("dir/a.txt", 200)
	s.Equal([]models.Event{models.Updated("dir/a.txt")}, s.cycle())
	s.Equal(Snapshot{"dir/a.txt": 200}, s.monitor.Snapshot())

	s.lister.file("dir/b.txt", 50)
	s.Equal([]models.Event{models.Created("dir/b.txt")}, s.cycle())

	s.lister.remove("dir/a.txt")
	s.Equal([]models.Event{models.Deleted("dir/a.txt")}, s.cycle())

	s.Equal(Snapshot{"dir/b.txt": 50}, s.monitor.Snapshot())
}

func (s *MonitorTestSuite) TestQuiescentCycleEmitsNothing() {
	s.lister.file("dir/a.txt", 1)
	s.lister.file("dir/b.txt", 2)
	s.lister.dir("dir/sub", 3)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.Empty(s.cycle())
	s.Empty(s.cycle())
}

func (s *MonitorTestSuite) TestPassOrderWithinOneCycle() {
	s.lister.file("dir/a.txt", 1)
	s.lister.file("dir/b.txt", 1)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.lister.remove("dir/a.txt")
	s.lister.file("dir/b.txt", 2)
	s.lister.file("dir/c.txt", 1)

	result, err := s.monitor.RunCycle(context.Background())
	s.Require().NoError(err)
	s.Equal(CycleResult{Updated: 1, Created: 1, Deleted: 1, Tracked: 2}, result)
	s.Equal([]models.Event{
		models.Updated("dir/b.txt"),
		models.Created("dir/c.txt"),
		models.Deleted("dir/a.txt"),
	}, s.sink.drain())
}

func (s *MonitorTestSuite) TestEachChangeReportedOnce() {
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.lister.file("dir/a.txt", 1)
	s.Equal([]models.Event{models.Created("dir/a.txt")}, s.cycle())
	s.Empty(s.cycle())

	s.lister.file("dir/a.txt", 5)
	s.Equal([]models.Event{models.Updated("dir/a.txt")}, s.cycle())
	s.Empty(s.cycle())

	s.lister.remove("dir/a.txt")
	s.Equal([]models.Event{models.Deleted("dir/a.txt")}, s.cycle())
	s.Empty(s.cycle())
}

func (s *MonitorTestSuite) TestRenameIsDeleteAndCreate() {
	s.lister.file("dir/old.txt", 7)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.lister.remove("dir/old.txt")
	s.lister.file("dir/new.txt", 7)

	s.Equal([]models.Event{
		models.Created("dir/new.txt"),
		models.Deleted("dir/old.txt"),
	}, s.cycle())
}

func (s *MonitorTestSuite) TestExcludedPathNeverCreated() {
	s.monitor = s.newMonitor(WithExclusions("./log.txt"))
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.lister.file("log.txt", 10)
	s.Empty(s.cycle())
	s.lister.file("log.txt", 20)
	s.Empty(s.cycle())

	_, tracked := s.monitor.Snapshot().Lookup("log.txt")
	s.False(tracked)
}

func (s *MonitorTestSuite) TestDirectoriesNeverCreatedOrUpdated() {
	s.lister.dir("dir/existing", 1)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.lister.dir("dir/existing", 2)
	s.lister.dir("dir/fresh", 1)
	s.Empty(s.cycle())

	snapshot := s.monitor.Snapshot()
	s.Equal(int64(1), snapshot["dir/existing"])
	_, tracked := snapshot.Lookup("dir/fresh")
	s.False(tracked)
}

func (s *MonitorTestSuite) TestDeletionIgnoresExclusions() {
	s.monitor = s.newMonitor(WithExclusions("dir/log.txt"))
	s.lister.file("dir/log.txt", 1)
	s.lister.dir("dir/sub", 1)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))
	s.Equal(Snapshot{"dir/log.txt": 1, "dir/sub": 1}, s.monitor.Snapshot())

	s.lister.remove("dir/log.txt")
	s.lister.remove("dir/sub")
	s.Equal([]models.Event{
		models.Deleted("dir/log.txt"),
		models.Deleted("dir/sub"),
	}, s.cycle())
	s.Empty(s.monitor.Snapshot())
}

func (s *MonitorTestSuite) TestCycleWithoutInitializationReportsCreations() {
	s.lister.file("dir/a.txt", 1)
	s.Equal(StateUninitialized, s.monitor.State())
	s.Equal([]models.Event{models.Created("dir/a.txt")}, s.cycle())
}

func (s *MonitorTestSuite) TestInitializationFailure() {
	lister := new(MockLister)
	listErr := &ListingError{Path: "dir", Err: ErrConfiguration}
	lister.On("List", "dir").Return(nil, listErr)

	m, err := New("dir", s.sink, WithLister(lister))
	s.Require().NoError(err)

	err = m.InitializeTimestamps(context.Background())

	var initErr *InitializationError
	s.Require().ErrorAs(err, &initErr)
	s.ErrorIs(err, ErrConfiguration)
	s.Equal("Error initializing timestamps: failed to list dir: configuration error", err.Error())
	s.Empty(m.Snapshot())
	s.Equal(StateReady, m.State())
	lister.AssertExpectations(s.T())
}

func (s *MonitorTestSuite) TestRunStopsOnCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.lister.file("dir/a.txt", 1)
	s.clock.onSleep = func(n int) {
		if n == 3 {
			cancel()
		}
	}

	err := s.monitor.Run(ctx)

	s.ErrorIs(err, ErrInterrupted)
	s.Equal(3, s.lister.calls)
	s.Equal(3, s.clock.sleeps)
	s.Equal(StateStopped, s.monitor.State())
	s.Equal([]models.Event{models.Created("dir/a.txt")}, s.sink.drain())
}

func (s *MonitorTestSuite) TestInitializeAfterStopKeepsStopped() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ErrorIs(s.monitor.Run(ctx), ErrInterrupted)
	s.Equal(StateStopped, s.monitor.State())

	s.lister.file("dir/a.txt", 1)
	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	s.Equal(StateStopped, s.monitor.State())
	s.Equal(Snapshot{"dir/a.txt": 1}, s.monitor.Snapshot())
}

func (s *MonitorTestSuite) TestInitializeLogsTrackedAndExcluded() {
	core, logs := observer.New(zap.DebugLevel)
	s.monitor = s.newMonitor(
		WithExclusions("dir/skip.me", "dir/log.txt"),
		WithLogger(&logger.Logger{SugaredLogger: zap.New(core).Sugar()}),
	)
	s.lister.file("dir/a.txt", 1)
	s.lister.file("dir/skip.me", 1)

	s.Require().NoError(s.monitor.InitializeTimestamps(context.Background()))

	entries := logs.FilterMessage("Initialized timestamps").All()
	s.Require().Len(entries, 1)
	fields := entries[0].ContextMap()
	s.Equal("dir", fields["directory"])
	s.EqualValues(2, fields["tracked"])
	s.EqualValues(2, fields["excluded"])
}

func (s *MonitorTestSuite) TestRunAlreadyCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.ErrorIs(s.monitor.Run(ctx), ErrInterrupted)
	s.Zero(s.lister.calls)
}

func (s *MonitorTestSuite) TestRunFailsFastOnListingError() {
	lister := new(MockLister)
	listErr := &ListingError{Path: "dir", Err: errors.New("input/output error")}
	lister.On("List", "dir").Return([]DirectoryEntry{}, nil).Once()
	lister.On("List", "dir").Return(nil, listErr).Once()

	m, err := New("dir", s.sink, WithLister(lister), WithClock(s.clock))
	s.Require().NoError(err)

	err = m.Run(context.Background())

	var monErr *MonitoringError
	s.Require().ErrorAs(err, &monErr)
	s.ErrorIs(err, listErr)
	s.NotErrorIs(err, ErrInterrupted)
	s.Equal(1, s.clock.sleeps)
	s.Equal(StateStopped, m.State())
	lister.AssertNumberOfCalls(s.T(), "List", 2)
}

func (s *MonitorTestSuite) TestCycleHook() {
	var results []CycleResult
	s.monitor = s.newMonitor(WithCycleHook(func(r CycleResult) {
		results = append(results, r)
	}))
	s.lister.file("dir/a.txt", 1)

	s.cycle()
	s.cycle()

	s.Equal([]CycleResult{{Created: 1, Tracked: 1}, {Tracked: 1}}, results)
}

func TestMonitorTestSuite(t *testing.T) {
	suite.Run(t, new(MonitorTestSuite))
}
