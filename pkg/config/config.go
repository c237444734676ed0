// Package config provides configuration loading and management for cellquant.
// It handles loading configuration from YAML files and provides the documented
// detector defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"cellquant/pkg/coloc"
	"cellquant/pkg/detect"
	"cellquant/pkg/imgproc"
)

// Config represents the application configuration loaded from YAML.
// Every field has a default; a missing config file runs the pipeline
// with the documented detector defaults.
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many images to process concurrently
		NumCores int `yaml:"numCores"`

		// SaveOverlays enables PNG exports of the QA overlays
		SaveOverlays bool `yaml:"saveOverlays"`

		// OverlayAlpha is the label-colormap blend transparency
		OverlayAlpha float64 `yaml:"overlayAlpha"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"processing"`

	// Channel enhancement parameters shared by all detectors
	Enhance struct {
		TilesX           int     `yaml:"tilesX"`
		TilesY           int     `yaml:"tilesY"`
		ClipLimit        float64 `yaml:"clipLimit"`
		BackgroundRadius int     `yaml:"backgroundRadius"`
		MorphBackground  bool    `yaml:"morphBackground"`
	} `yaml:"enhance"`

	// Nucleus segmentation parameters
	Nucleus detect.NucleusParams `yaml:"nucleus"`

	// ROS is the green-channel ROS detector: blob stage plus shape filter
	ROS struct {
		Blob   detect.BlobParams   `yaml:"blob"`
		Filter detect.FilterParams `yaml:"filter"`
	} `yaml:"ros"`

	// LDGreen is the green-channel lipid-droplet detector
	LDGreen struct {
		Blob   detect.BlobParams   `yaml:"blob"`
		Filter detect.FilterParams `yaml:"filter"`
	} `yaml:"ldGreen"`

	// LDRed is the red-channel lipid-droplet detector with the
	// DoG/steerable mask combination
	LDRed struct {
		Blob               detect.BlobParams   `yaml:"blob"`
		SDOG               detect.SDOGParams   `yaml:"sdog"`
		IntensityThreshold float64             `yaml:"intensityThreshold"`
		Filter             detect.FilterParams `yaml:"filter"`
	} `yaml:"ldRed"`

	// Diffuse is the intensity-clustering detector for diffuse staining
	Diffuse struct {
		Params detect.DiffuseParams `yaml:"params"`
		Filter detect.FilterParams  `yaml:"filter"`
	} `yaml:"diffuse"`

	// Coloc configures colocalization detection and metrics
	Coloc struct {
		Detect  coloc.DetectParams  `yaml:"detect"`
		Metrics coloc.MetricsParams `yaml:"metrics"`
	} `yaml:"coloc"`

	// Texture is the local-entropy filter window radius
	Texture struct {
		Radius int `yaml:"radius"`
	} `yaml:"texture"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.SaveOverlays = false
	cfg.Processing.OverlayAlpha = 0.5
	cfg.Processing.Verbose = true

	// Set default enhancement parameters
	cfg.Enhance.TilesX = 8
	cfg.Enhance.TilesY = 8
	cfg.Enhance.ClipLimit = 0.01
	cfg.Enhance.BackgroundRadius = 18
	cfg.Enhance.MorphBackground = false

	cfg.Nucleus = detect.DefaultNucleusParams()

	cfg.ROS.Blob = detect.DefaultBlobParams()
	cfg.ROS.Filter = detect.ROSFilterParams()

	cfg.LDGreen.Blob = detect.DefaultBlobParams()
	cfg.LDGreen.Filter = detect.LDFilterParams()

	cfg.LDRed.Blob = detect.DefaultBlobParams()
	cfg.LDRed.SDOG = detect.DefaultSDOGParams()
	cfg.LDRed.IntensityThreshold = detect.RedCombineIntensityThreshold
	cfg.LDRed.Filter = detect.LDFilterParams()

	cfg.Diffuse.Params = detect.DefaultDiffuseParams()
	cfg.Diffuse.Filter = detect.DiffuseFilterParams()

	cfg.Coloc.Detect = coloc.DefaultDetectParams()
	cfg.Coloc.Metrics = coloc.DefaultMetricsParams()

	cfg.Texture.Radius = 4

	return cfg
}

// EnhanceParams converts the enhance section into the imgproc value type.
func (c *Config) EnhanceParams() imgproc.EnhanceParams {
	return imgproc.EnhanceParams{
		TilesX:           c.Enhance.TilesX,
		TilesY:           c.Enhance.TilesY,
		ClipLimit:        c.Enhance.ClipLimit,
		BackgroundRadius: c.Enhance.BackgroundRadius,
		MorphBackground:  c.Enhance.MorphBackground,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
