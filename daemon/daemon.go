package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tejiriaustin/filemonitor/config"
	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/monitoring"
)

const (
	AppName    = "FileMonitor"
	AppVersion = "0.1"

	StartMessage     = "Monitoring started."
	InterruptMessage = "Monitoring interrupted."
)

var Divider = strings.Repeat("·", 80)

func Banner() string {
	return fmt.Sprintf("[ %s ] v%s", AppName, AppVersion)
}

type Daemon struct {
	cfg     *config.Config
	logger  *logger.Logger
	tracker *FileTracker
	console io.Writer
}

func New(cfg *config.Config, log *logger.Logger, tracker *FileTracker, console io.Writer) (*Daemon, error) {
	if tracker == nil {
		return nil, errors.New("file tracker is required")
	}
	return &Daemon{
		cfg:     cfg,
		logger:  log,
		tracker: tracker,
		console: console,
	}, nil
}

// Run builds the initial snapshot and monitors until ctx is cancelled, which
// returns nil, or a cycle fails, which returns the *monitoring.MonitoringError.
// An initialization failure is logged and monitoring continues.
func (d *Daemon) Run(ctx context.Context) error {
	monitor := d.tracker.Monitor()

	d.logger.Info(StartMessage)

	if err := monitor.InitializeTimestamps(ctx); err != nil {
		d.logger.Error(err.Error())
	}

	fmt.Fprintln(d.console, Divider)
	fmt.Fprintf(d.console, "Changes will be logged in %s\n", d.cfg.LogFile)
	fmt.Fprintln(d.console)

	err := monitor.Run(ctx)
	if errors.Is(err, monitoring.ErrInterrupted) {
		d.logger.Info(InterruptMessage)
		fmt.Fprintln(d.console, InterruptMessage)
		return nil
	}

	d.logger.Error(err.Error())
	fmt.Fprintln(d.console, err.Error())
	return err
}
