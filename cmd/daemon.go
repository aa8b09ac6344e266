// Copyright © 2024 NAME HERE tejiriaustin123@gmail.com

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tejiriaustin/filemonitor/config"
	"github.com/tejiriaustin/filemonitor/daemon"
	"github.com/tejiriaustin/filemonitor/logger"
	"github.com/tejiriaustin/filemonitor/server"
)

func runMonitor(cmd *cobra.Command, args []string) {
	if err := monitorService(config.GetConfig()); err != nil {
		os.Exit(1)
	}
}

func monitorService(cfg *config.Config) error {
	fmt.Println(daemon.Banner())

	eventLog, err := logger.NewLogger(logger.Config{
		LogLevel:    cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: []string{cfg.LogFile},
	})
	if err != nil {
		log.Errorw("Failed to open log file", "path", cfg.LogFile, "error", err)
		return err
	}
	defer eventLog.Sync()

	if err := cfg.WritePidFile(os.Getpid()); err != nil {
		log.Warnw("Failed to write PID file", "error", err)
	} else {
		defer func() {
			if err := cfg.RemovePidFile(); err != nil {
				log.Warnw("Failed to remove PID file", "error", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracker, err := daemon.NewFileTracker(cfg, eventLog, os.Stdout, reg)
	if err != nil {
		log.Errorw("Failed to create file tracker", "error", err)
		return err
	}
	defer tracker.Close()

	d, err := daemon.New(cfg, eventLog, tracker, os.Stdout)
	if err != nil {
		log.Errorw("Failed to create daemon", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.StatusAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := server.NewHandler(log).SetupHandler(tracker.Journal(), reg)
			if err := server.New(cfg, log).Start(ctx, h); err != nil {
				log.Errorw("Status server stopped", "error", err)
			}
		}()
	}

	runErr := d.Run(ctx)
	stop()
	wg.Wait()

	return runErr
}

func stopMonitor(cmd *cobra.Command, args []string) {
	cfg := config.GetConfig()
	switch runtime.GOOS {
	case "darwin", "linux":
		stopUnixMonitor(cfg, log)
	case "windows":
		stopWindowsMonitor(cfg, log)
	default:
		log.Errorw("Unsupported operating system", "os", runtime.GOOS)
		os.Exit(1)
	}
}

func stopUnixMonitor(cfg *config.Config, log *logger.Logger) {
	pid, err := cfg.ReadPidFile()
	if err != nil {
		log.Infow("Failed to read PID file", "error", err)
		os.Exit(1)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		log.Errorw("Failed to find process", "pid", pid, "error", err)
		if err := cfg.RemovePidFile(); err != nil {
			log.Infow("Failed to remove PID file", "error", err)
		}
		os.Exit(1)
	}

	// Interrupt lets the monitor report "Monitoring interrupted." and exit 0
	if err := process.Signal(os.Interrupt); err != nil {
		log.Infow("Failed to stop monitor using SIGINT", "pid", pid, "error", err)

		if err := process.Kill(); err != nil {
			log.Infow("Failed to stop monitor using SIGKILL", "pid", pid, "error", err)
			os.Exit(1)
		}
		log.Infow("Monitor stopped using SIGKILL", "pid", pid)
		if err := cfg.RemovePidFile(); err != nil {
			log.Infow("Failed to remove PID file", "error", err)
		}
		return
	}
	log.Infow("Monitor signalled to stop", "pid", pid)
}

func stopWindowsMonitor(cfg *config.Config, log *logger.Logger) {
	pid, err := cfg.ReadPidFile()
	if err != nil {
		log.Errorw("Failed to read PID file", "error", err)
		os.Exit(1)
	}

	cmd := exec.Command("taskkill", "/F", "/PID", strconv.Itoa(pid))
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Errorw("Failed to stop monitor", "pid", pid, "error", err, "output", string(output))
		os.Exit(1)
	}
	log.Infow("Monitor stopped", "pid", pid, "output", string(output))

	if err := cfg.RemovePidFile(); err != nil {
		log.Infow("Failed to remove PID file", "error", err)
	}
}
