// Package config loads and watches the Camarr configuration. Values come
// from defaults, then an optional YAML or JSON file, then CAMARR_* environment
// variables, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Probe    ProbeConfig    `yaml:"probe" json:"probe"`
	Sessions SessionConfig  `yaml:"sessions" json:"sessions"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host                string `yaml:"host" json:"host" env:"CAMARR_HOST"`
	Port                int    `yaml:"port" json:"port" env:"CAMARR_PORT"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" json:"read_timeout_seconds" env:"CAMARR_READ_TIMEOUT_SECONDS"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" json:"write_timeout_seconds" env:"CAMARR_WRITE_TIMEOUT_SECONDS"`
	EnableCORS          bool   `yaml:"enable_cors" json:"enable_cors" env:"CAMARR_ENABLE_CORS"`
}

// DatabaseConfig selects and parameterizes the backing store.
type DatabaseConfig struct {
	Type     string `yaml:"type" json:"type" env:"CAMARR_DATABASE_TYPE"`
	DataDir  string `yaml:"data_dir" json:"data_dir" env:"CAMARR_DATA_DIR"`
	Path     string `yaml:"path" json:"path" env:"CAMARR_DATABASE_PATH"`
	Host     string `yaml:"host" json:"host" env:"CAMARR_POSTGRES_HOST"`
	Port     int    `yaml:"port" json:"port" env:"CAMARR_POSTGRES_PORT"`
	User     string `yaml:"user" json:"user" env:"CAMARR_POSTGRES_USER"`
	Password string `yaml:"password" json:"password" env:"CAMARR_POSTGRES_PASSWORD"`
	Name     string `yaml:"name" json:"name" env:"CAMARR_POSTGRES_DB"`
	LogSQL   bool   `yaml:"log_sql" json:"log_sql" env:"CAMARR_DATABASE_LOG_SQL"`
}

// ProbeConfig controls capability probes against camera firmware.
type ProbeConfig struct {
	Port           int `yaml:"port" json:"port" env:"CAMARR_PROBE_PORT"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds" env:"CAMARR_PROBE_TIMEOUT_SECONDS"`
}

// SessionConfig bounds stream session management.
type SessionConfig struct {
	MaxPerCamera int    `yaml:"max_per_camera" json:"max_per_camera" env:"CAMARR_MAX_SESSIONS_PER_CAMERA"`
	RTSPPort     int    `yaml:"rtsp_port" json:"rtsp_port" env:"CAMARR_RTSP_PORT"`
	OutputBase   string `yaml:"output_base" json:"output_base" env:"CAMARR_STREAM_OUTPUT_BASE"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" env:"CAMARR_LOG_LEVEL"`
}

// ConfigManager owns the active configuration and notifies watchers when it
// is swapped by a reload.
type ConfigManager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	watchers   []func(*Config)
}

var (
	managerOnce sync.Once
	manager     *ConfigManager
)

// GetConfigManager returns the process-wide manager.
func GetConfigManager() *ConfigManager {
	managerOnce.Do(func() {
		manager = &ConfigManager{config: DefaultConfig()}
	})
	return manager
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8084,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 30,
			EnableCORS:          true,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: "./camarr-data",
			Host:    "localhost",
			Port:    5432,
			User:    "camarr",
			Name:    "camarr",
		},
		Probe: ProbeConfig{
			Port:           80,
			TimeoutSeconds: 5,
		},
		Sessions: SessionConfig{
			MaxPerCamera: 2,
			RTSPPort:     554,
			OutputBase:   "rtsp://127.0.0.1:8554",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds a fresh config from defaults, the given file (when it
// exists), and the environment, then installs it as the active config.
func (cm *ConfigManager) LoadConfig(path string) error {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	loadFromEnv(reflect.ValueOf(cfg).Elem())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.applyDerived()

	cm.mu.Lock()
	cm.config = cfg
	cm.configPath = path
	watchers := make([]func(*Config), len(cm.watchers))
	copy(watchers, cm.watchers)
	cm.mu.Unlock()

	for _, w := range watchers {
		w(cfg)
	}
	return nil
}

// Reload re-reads the file the active config was loaded from.
func (cm *ConfigManager) Reload() error {
	cm.mu.RLock()
	path := cm.configPath
	cm.mu.RUnlock()
	return cm.LoadConfig(path)
}

// GetConfig returns the active configuration.
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigPath returns the file the active config was loaded from, if any.
func (cm *ConfigManager) ConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// AddWatcher registers a callback invoked after every successful load.
func (cm *ConfigManager) AddWatcher(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.watchers = append(cm.watchers, fn)
}

func loadFromFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// loadFromEnv walks the config struct and applies any env-tagged overrides.
func loadFromEnv(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.Struct {
			loadFromEnv(field)
			continue
		}
		tag := t.Field(i).Tag.Get("env")
		if tag == "" {
			continue
		}
		raw, ok := os.LookupEnv(tag)
		if !ok || raw == "" {
			continue
		}
		setFieldValue(field, raw)
	}
}

func setFieldValue(field reflect.Value, raw string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			field.SetBool(b)
		}
	case reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			field.SetFloat(f)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %d", c.Probe.TimeoutSeconds)
	}
	if c.Sessions.MaxPerCamera < 1 {
		return fmt.Errorf("sessions max_per_camera must be at least 1, got %d", c.Sessions.MaxPerCamera)
	}
	return nil
}

func (c *Config) applyDerived() {
	if c.Database.Type == "sqlite" && c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Database.DataDir, "camarr.db")
	}
}

// Load loads configuration from the given path into the global manager.
func Load(path string) error {
	return GetConfigManager().LoadConfig(path)
}

// Get returns the active configuration.
func Get() *Config {
	return GetConfigManager().GetConfig()
}

// AddWatcher registers a reload callback on the global manager.
func AddWatcher(fn func(*Config)) {
	GetConfigManager().AddWatcher(fn)
}
