package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultLogFile = "./file_monitor.log"
	EnvPrefix      = "FILEMONITOR"
)

type Config struct {
	ConfigPath  string
	Directory   string        `mapstructure:"directory" validate:"required"`
	Exclude     []string      `mapstructure:"exclude"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	LogFile     string        `mapstructure:"log_file" validate:"required"`
	LogLevel    string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string        `mapstructure:"log_format" validate:"oneof=console json"`
	JournalPath string        `mapstructure:"journal_path"`
	StatusAddr  string        `mapstructure:"status_addr"`
	PidFilePath string        `mapstructure:"pid_file_path"`
	mutex       sync.RWMutex
}

var (
	appConfig     = &Config{}
	configRWMutex sync.RWMutex
)

func GetConfig() *Config {
	configRWMutex.RLock()
	defer configRWMutex.RUnlock()
	return appConfig
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("directory", "./")
	v.SetDefault("exclude", []string{})
	v.SetDefault("interval", "1s")
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("journal_path", "")
	v.SetDefault("status_addr", "")
	v.SetDefault("pid_file_path", filepath.Join(os.TempDir(), "filemonitor.pid"))
}

// Load reads the configuration into v, validates it and installs it as the
// process configuration returned by GetConfig. A missing config file is not
// an error; defaults apply.
func Load(v *viper.Viper, validate *validator.Validate, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.filemonitor")
		v.AddConfigPath("/etc/filemonitor")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.ConfigPath = v.ConfigFileUsed()

	configRWMutex.Lock()
	appConfig = cfg
	configRWMutex.Unlock()

	return cfg, nil
}

// ExcludedPaths lists the paths the monitor must ignore: the configured
// exclusions plus every file this process writes itself.
func (c *Config) ExcludedPaths() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	own := []string{c.LogFile}
	if c.JournalPath != "" {
		own = append(own, c.JournalPath, c.JournalPath+"-journal")
	}
	if c.PidFilePath != "" {
		own = append(own, c.PidFilePath)
	}

	paths := make([]string, 0, len(c.Exclude)+2*len(own))
	paths = append(paths, c.Exclude...)
	for _, path := range own {
		paths = append(paths, path)
		if alias, ok := c.pathInDirectory(path); ok {
			paths = append(paths, alias)
		}
	}
	return paths
}

// pathInDirectory spells path the way the monitor lists it when the file
// lives directly or deeper inside Directory. Exclusions match exactly, so a
// relative log file under an absolute directory (or the reverse) needs this
// second spelling.
func (c *Config) pathInDirectory(path string) (string, bool) {
	absDir, err := filepath.Abs(c.Directory)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	alias := filepath.Join(c.Directory, rel)
	if alias == filepath.Clean(path) {
		return "", false
	}
	return alias, true
}

func (c *Config) WritePidFile(pid int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.PidFilePath == "" {
		c.PidFilePath = filepath.Join(os.TempDir(), "filemonitor.pid")
	}

	if err := os.WriteFile(c.PidFilePath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

func (c *Config) ReadPidFile() (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.PidFilePath == "" {
		return 0, fmt.Errorf("PID file path not set")
	}

	content, err := os.ReadFile(c.PidFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("monitor not running")
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

func (c *Config) RemovePidFile() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.PidFilePath == "" {
		return nil
	}

	err := os.Remove(c.PidFilePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}
