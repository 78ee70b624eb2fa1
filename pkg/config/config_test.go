package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"voxelregion/pkg/voxel"
)

// TestDefaultConfig verifies the defaults are self-consistent
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Image.Calibration) != 3 {
		t.Errorf("expected a 3-axis default calibration, got %v", cfg.Image.Calibration)
	}
	for d, c := range cfg.Image.Calibration {
		if c <= 0 {
			t.Errorf("default calibration[%d] = %f, must be positive", d, c)
		}
	}
	if _, err := cfg.ExtensionPolicy(); err != nil {
		t.Errorf("default out-of-bounds policy must parse: %v", err)
	}
	if cfg.Filter.Radius <= 0 {
		t.Errorf("default filter radius %f, must be positive", cfg.Filter.Radius)
	}
	if len(cfg.Localization.TypicalSigmas) != 3 {
		t.Errorf("expected 3 default sigmas, got %v", cfg.Localization.TypicalSigmas)
	}
}

// TestLoadConfigMissingFile verifies that a missing file yields the defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("expected the defaults (-default +got):\n%s", diff)
	}
}

// TestConfigRoundTrip verifies save/load preserves every field
func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Image.Calibration = []float64{0.5, 0.5, 3.0}
	cfg.Image.OutOfBounds = "periodic"
	cfg.Filter.Radius = 4.5
	cfg.Localization.TypicalSigmas = []float64{1.0, 1.0, 2.5}
	cfg.Localization.MaxIterations = 50

	path := filepath.Join(t.TempDir(), "sub", "peakfit.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip changed the config (-saved +loaded):\n%s", diff)
	}
}

// TestExtensionPolicyNames verifies the policy-name translation, including
// the defined error for unknown names
func TestExtensionPolicyNames(t *testing.T) {
	cases := []struct {
		name     string
		expected voxel.ExtensionPolicy
	}{
		{"mirror-single", voxel.ExtendMirrorSingle},
		{"mirror-double", voxel.ExtendMirrorDouble},
		{"periodic", voxel.ExtendPeriodic},
		{"constant", voxel.ExtendConstant},
		{"", voxel.ExtendMirrorDouble},
	}
	cfg := DefaultConfig()
	for _, tc := range cases {
		cfg.Image.OutOfBounds = tc.name
		policy, err := cfg.ExtensionPolicy()
		if err != nil {
			t.Errorf("%q: %v", tc.name, err)
			continue
		}
		if policy != tc.expected {
			t.Errorf("%q: expected %v, got %v", tc.name, tc.expected, policy)
		}
	}

	cfg.Image.OutOfBounds = "clamp"
	if _, err := cfg.ExtensionPolicy(); err == nil {
		t.Error("expected an error for an unknown policy name")
	}
}
