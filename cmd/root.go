// Copyright © 2024 NAME HERE tejiriaustin123@gmail.com

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tejiriaustin/filemonitor/clients"
	"github.com/tejiriaustin/filemonitor/config"
	"github.com/tejiriaustin/filemonitor/daemon"
	"github.com/tejiriaustin/filemonitor/logger"
)

var (
	cfgFile     string
	eventsLimit int
	log         *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "filemonitor",
	Short: "File Monitor",
	Long: `Polls a single directory and reports files that are created,
updated or deleted, to a log file and the console.`,
	Run: runMonitor,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running File Monitor",
	Run:   stopMonitor,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether File Monitor is running",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.GetConfig()
		fmt.Printf("Service Status:  %s\n", checkStatus(cfg))
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent events from a running File Monitor",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.GetConfig()
		if cfg.StatusAddr == "" {
			log.Error("status_addr is not configured")
			os.Exit(1)
		}
		if eventsLimit < 0 {
			log.Errorw("Invalid --limit", "limit", eventsLimit)
			os.Exit(1)
		}

		events, err := clients.NewClient(clients.BaseURLFromAddr(cfg.StatusAddr)).GetFileEvents(eventsLimit)
		if err != nil {
			log.Errorw("Failed to fetch events", "error", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tOPERATION\tPATH")
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Operation, e.Path)
		}
		w.Flush()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration for File Monitor",
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.GetConfig()
		fmt.Println("Current configuration:")
		fmt.Printf("Config file: %s\n", cfg.ConfigPath)
		fmt.Printf("Directory: %s\n", cfg.Directory)
		fmt.Printf("Interval: %s\n", cfg.Interval)
		fmt.Printf("Excluded paths: %v\n", cfg.ExcludedPaths())
		fmt.Printf("Log file: %s\n", cfg.LogFile)
		fmt.Printf("Log level: %s\n", cfg.LogLevel)
		fmt.Printf("Journal: %s\n", cfg.JournalPath)
		fmt.Printf("Status address: %s\n", cfg.StatusAddr)
		fmt.Printf("PID file: %s\n", cfg.PidFilePath)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(daemon.Banner())
	},
}

func checkStatus(cfg *config.Config) string {
	if cfg.StatusAddr != "" {
		if err := clients.NewClient(clients.BaseURLFromAddr(cfg.StatusAddr)).Health(); err != nil {
			return "Stopped"
		}
		return "Running"
	}

	pid, err := cfg.ReadPidFile()
	if err != nil {
		return "Stopped"
	}
	return fmt.Sprintf("Running (pid %d)", pid)
}

func buildLogger() {
	var err error
	log, err = logger.NewLogger(logger.Config{
		LogLevel:    "info",
		Format:      logger.FormatConsole,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		panic(fmt.Errorf("failed to create logger: %v", err))
	}
}

func initConfig() {
	if _, err := config.Load(viper.GetViper(), validator.New(), cfgFile); err != nil {
		log.Errorw("Failed to load configuration", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(buildLogger, initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.Flags().String("dir", "", "directory to monitor (default \"./\")")
	rootCmd.Flags().Duration("interval", 0, "delay between polling cycles (default 1s)")
	_ = viper.BindPFlag("directory", rootCmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("interval", rootCmd.Flags().Lookup("interval"))

	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "maximum number of events to show (0 for all)")

	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configViewCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
