package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

const (
	configDirName  = ".mcpdesk"
	configFileName = "config.json"
	dbFileName     = "mcpdesk.db"
	draftFileName  = "draft.yaml"
	envFileName    = ".env"
)

// Token check modes for Settings.TokenCheck.
const (
	TokenCheckPrefix = "prefix"
	TokenCheckHTTP   = "http"
	TokenCheckOff    = "off"
)

// Settings holds user preferences stored at ~/.mcpdesk/config.json.
// Each field can be overridden by the environment variable in its env tag.
type Settings struct {
	UserID            string `json:"userId" env:"MCPDESK_USER_ID"`
	Email             string `json:"email,omitempty" env:"MCPDESK_EMAIL"`
	DatabasePath      string `json:"databasePath,omitempty" env:"MCPDESK_DB_PATH"`
	DesktopConfigPath string `json:"desktopConfigPath,omitempty" env:"MCPDESK_DESKTOP_CONFIG"`
	LogLevel          string `json:"logLevel,omitempty" env:"MCPDESK_LOG_LEVEL"`
	TokenCheck        string `json:"tokenCheck,omitempty" env:"MCPDESK_TOKEN_CHECK"`
	HuggingFaceURL    string `json:"huggingFaceUrl,omitempty" env:"MCPDESK_HF_URL"`
}

// tokenCacheTTL bounds how long remote token checks are reused.
const tokenCacheTTL = 10 * time.Minute

// TokenValidator returns the token check selected by TokenCheck, or nil when
// checks are off. Remote checks are cached.
func (s *Settings) TokenValidator() service.TokenValidator {
	switch strings.ToLower(strings.TrimSpace(s.TokenCheck)) {
	case TokenCheckOff:
		return nil
	case TokenCheckHTTP:
		url := s.HuggingFaceURL
		if url == "" {
			url = service.DefaultHuggingFaceURL
		}
		return service.NewCachingTokenValidator(service.NewHTTPTokenValidator(url), tokenCacheTTL)
	default:
		return service.NewPrefixTokenValidator()
	}
}

// ConfigManager handles reading and writing the mcpdesk settings.
type ConfigManager struct {
	configDir string
	environ   map[string]string // nil means the process environment
	mu        sync.RWMutex
}

// NewConfigManager creates a ConfigManager using the default config path (~/.mcpdesk/).
func NewConfigManager() (*ConfigManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return &ConfigManager{
		configDir: filepath.Join(home, configDirName),
	}, nil
}

// NewConfigManagerWithDir creates a ConfigManager using a custom config directory.
// Useful for testing.
func NewConfigManagerWithDir(dir string) *ConfigManager {
	return &ConfigManager{configDir: dir}
}

// WithEnvironment replaces the process environment used for overrides.
func (cm *ConfigManager) WithEnvironment(environ map[string]string) *ConfigManager {
	cm.environ = environ
	return cm
}

// ConfigDir returns the configuration directory path.
func (cm *ConfigManager) ConfigDir() string {
	return cm.configDir
}

// ConfigPath returns the full path to the settings file.
func (cm *ConfigManager) ConfigPath() string {
	return filepath.Join(cm.configDir, configFileName)
}

// DraftPath returns the path of the in-progress wizard draft.
func (cm *ConfigManager) DraftPath() string {
	return filepath.Join(cm.configDir, draftFileName)
}

// EnvPath returns the path of the token env file.
func (cm *ConfigManager) EnvPath() string {
	return filepath.Join(cm.configDir, envFileName)
}

// Load reads the settings from disk and applies environment overrides.
// Returns defaults if the file doesn't exist.
func (cm *ConfigManager) Load() (*Settings, error) {
	s, err := cm.loadFile()
	if err != nil {
		return nil, err
	}

	opts := env.Options{}
	if cm.environ != nil {
		opts.Environment = cm.environ
	}
	if err := env.ParseWithOptions(s, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cm.applyDefaults(s)
	return s, nil
}

func (cm *ConfigManager) loadFile() (*Settings, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	data, err := os.ReadFile(cm.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &s, nil
}

func (cm *ConfigManager) applyDefaults(s *Settings) {
	if s.DatabasePath == "" {
		s.DatabasePath = filepath.Join(cm.configDir, dbFileName)
	}
	if s.DesktopConfigPath == "" {
		s.DesktopConfigPath = DefaultDesktopConfigPath()
	}
	if s.TokenCheck == "" {
		s.TokenCheck = TokenCheckPrefix
	}
}

// LoadOrInit loads the settings and, on first run, generates and saves a
// local user ID.
func (cm *ConfigManager) LoadOrInit() (*Settings, error) {
	s, err := cm.Load()
	if err != nil {
		return nil, err
	}
	if s.UserID != "" {
		return s, nil
	}

	stored, err := cm.loadFile()
	if err != nil {
		return nil, err
	}
	stored.UserID = uuid.NewString()
	if err := cm.Save(stored); err != nil {
		return nil, err
	}
	s.UserID = stored.UserID
	return s, nil
}

// Save writes the settings to disk, creating the directory if needed.
func (cm *ConfigManager) Save(s *Settings) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return writeFileAtomic(cm.ConfigPath(), data, 0o644)
}

// writeFileAtomic writes to a temp file then renames it over path.
// Creates parent directories if needed.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
