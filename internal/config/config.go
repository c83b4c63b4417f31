// Package config loads gesturenote settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting. Values come from GESTURENOTE_*
// environment variables; command line flags may override them afterwards.
type Config struct {
	DataDir         string        `envconfig:"GESTURENOTE_DATA_DIR" default:"./data"`
	DBPath          string        `envconfig:"GESTURENOTE_DB_PATH"`
	CameraID        int           `envconfig:"GESTURENOTE_CAMERA_ID" default:"0"`
	Classes         []string      `envconfig:"GESTURENOTE_CLASSES" default:"scroll down,scroll up,next note,prev note,zoom in,zoom out"`
	SamplesPerClass int           `envconfig:"GESTURENOTE_SAMPLES_PER_CLASS" default:"200"`
	TestFraction    float64       `envconfig:"GESTURENOTE_TEST_FRACTION" default:"0.2"`
	Trees           int           `envconfig:"GESTURENOTE_TREES" default:"100"`
	Seed            int64         `envconfig:"GESTURENOTE_SEED" default:"0"`
	MinConfidence   float64       `envconfig:"GESTURENOTE_MIN_DETECTION_CONFIDENCE" default:"0.3"`
	FrameInterval   time.Duration `envconfig:"GESTURENOTE_FRAME_INTERVAL" default:"800ms"`
	ListenAddr      string        `envconfig:"GESTURENOTE_LISTEN_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"GESTURENOTE_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"GESTURENOTE_LOG_FORMAT" default:"console"`
	ShowWindow      bool          `envconfig:"GESTURENOTE_SHOW_WINDOW" default:"true"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges that envconfig cannot express.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return errors.New("data dir must not be empty")
	case len(c.Classes) == 0:
		return errors.New("at least one class is required")
	case c.SamplesPerClass < 1:
		return fmt.Errorf("samples per class must be positive, got %d", c.SamplesPerClass)
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return fmt.Errorf("test fraction must be in (0, 1), got %v", c.TestFraction)
	case c.Trees < 1:
		return fmt.Errorf("trees must be positive, got %d", c.Trees)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("min detection confidence must be in [0, 1], got %v", c.MinConfidence)
	case c.FrameInterval < 0:
		return fmt.Errorf("frame interval must not be negative, got %v", c.FrameInterval)
	}
	return nil
}

// ResolveDBPath returns DBPath, defaulting to ~/.gesturenote/gesturenote.db.
// The parent directory is created when missing.
func (c *Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".gesturenote", "gesturenote.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return path, nil
}
