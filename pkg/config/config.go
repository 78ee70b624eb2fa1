// Package config provides configuration loading and management for
// voxelregion tools. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"voxelregion/pkg/voxel"
)

// Config represents the tool configuration loaded from YAML
type Config struct {
	// Image parameters
	Image struct {
		// Calibration is the physical size of a voxel along each axis,
		// e.g. mm per voxel; anisotropic stacks use a larger z entry
		Calibration []float64 `yaml:"calibration"`

		// OutOfBounds selects how coordinates outside the image resolve:
		// mirror-single, mirror-double, periodic or constant
		OutOfBounds string `yaml:"outOfBounds"`

		// FillValue is the value returned outside the image under the
		// constant policy
		FillValue float64 `yaml:"fillValue"`
	} `yaml:"image"`

	// Filter parameters
	Filter struct {
		// Radius is the physical radius of the sphere neighborhood used
		// for local filtering
		Radius float64 `yaml:"radius"`
	} `yaml:"filter"`

	// Localization parameters
	Localization struct {
		// TypicalSigmas is the expected peak spread per axis, in voxels
		TypicalSigmas []float64 `yaml:"typicalSigmas"`

		// PeakThreshold is the minimum intensity for a voxel to count as a
		// peak candidate
		PeakThreshold float64 `yaml:"peakThreshold"`

		// MinSeparation is the minimum physical distance between two
		// reported peaks
		MinSeparation float64 `yaml:"minSeparation"`

		// MaxIterations caps the Levenberg-Marquardt refinement
		MaxIterations int `yaml:"maxIterations"`

		// Tolerance stops the refinement when the relative error
		// improvement falls below it
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"localization"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default image parameters: isotropic in-plane sampling with a
	// doubled inter-slice distance, mirrored boundaries
	cfg.Image.Calibration = []float64{1.0, 1.0, 2.0}
	cfg.Image.OutOfBounds = "mirror-double"
	cfg.Image.FillValue = 0.0

	// Set default filter parameters
	cfg.Filter.Radius = 2.0

	// Set default localization parameters
	cfg.Localization.TypicalSigmas = []float64{2.0, 2.0, 2.0}
	cfg.Localization.PeakThreshold = 0.5
	cfg.Localization.MinSeparation = 4.0
	cfg.Localization.MaxIterations = 300
	cfg.Localization.Tolerance = 1e-9

	return cfg
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

// ExtensionPolicy translates the configured out-of-bounds name into a voxel
// extension policy, with a defined error for unknown names
func (c *Config) ExtensionPolicy() (voxel.ExtensionPolicy, error) {
	switch c.Image.OutOfBounds {
	case "mirror-single":
		return voxel.ExtendMirrorSingle, nil
	case "mirror-double", "":
		return voxel.ExtendMirrorDouble, nil
	case "periodic":
		return voxel.ExtendPeriodic, nil
	case "constant":
		return voxel.ExtendConstant, nil
	default:
		return 0, fmt.Errorf("unknown out-of-bounds policy %q", c.Image.OutOfBounds)
	}
}

// Extend wraps an image with the configured extension policy
func (c *Config) Extend(img *voxel.Image) (*voxel.Extended, error) {
	policy, err := c.ExtensionPolicy()
	if err != nil {
		return nil, err
	}
	if policy == voxel.ExtendConstant {
		return voxel.ExtendWithConstant(img, c.Image.FillValue), nil
	}
	return voxel.Extend(img, policy), nil
}
