package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.NumCores < 1 {
		t.Error("default NumCores should be at least 1")
	}
	if cfg.Nucleus.MinArea != 100 {
		t.Errorf("nucleus MinArea = %d, want 100", cfg.Nucleus.MinArea)
	}
	if cfg.ROS.Filter.MinArea != 30 || cfg.ROS.Filter.MaxArea != 300 {
		t.Errorf("ROS area bounds = [%d,%d], want [30,300]",
			cfg.ROS.Filter.MinArea, cfg.ROS.Filter.MaxArea)
	}
	if cfg.ROS.Filter.MaxDistHighBg != 90 || cfg.ROS.Filter.MaxDistLowBg != 125 {
		t.Error("ROS distance bounds should default to 90/125")
	}
	if cfg.Diffuse.Params.K != 3 || cfg.Diffuse.Params.SampleBudget != 50000 {
		t.Error("diffuse clustering should default to k=3 with a 50k sample budget")
	}
	if cfg.Coloc.Metrics.Permutations != 100 {
		t.Errorf("permutations = %d, want 100", cfg.Coloc.Metrics.Permutations)
	}
	if cfg.LDRed.IntensityThreshold != 0.15 {
		t.Errorf("red combine threshold = %v, want 0.15", cfg.LDRed.IntensityThreshold)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file failed: %v", err)
	}
	if cfg.Nucleus.OtsuScale != 0.9 {
		t.Errorf("OtsuScale = %v, want default 0.9", cfg.Nucleus.OtsuScale)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.ROS.Filter.MinCircularity = 0.6
	cfg.Diffuse.Params.Seed = 42

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Processing.NumCores != 3 {
		t.Errorf("NumCores = %d, want 3", loaded.Processing.NumCores)
	}
	if loaded.ROS.Filter.MinCircularity != 0.6 {
		t.Errorf("MinCircularity = %v, want 0.6", loaded.ROS.Filter.MinCircularity)
	}
	if loaded.Diffuse.Params.Seed != 42 {
		t.Errorf("Seed = %d, want 42", loaded.Diffuse.Params.Seed)
	}
}

func TestLoadConfigPartialOverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	partial := []byte("nucleus:\n  minArea: 50\n")
	if err := os.WriteFile(path, partial, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Nucleus.MinArea != 50 {
		t.Errorf("MinArea = %d, want overridden 50", cfg.Nucleus.MinArea)
	}
	if cfg.Nucleus.OtsuScale != 0.9 {
		t.Errorf("OtsuScale = %v, want default 0.9 preserved", cfg.Nucleus.OtsuScale)
	}
}

func TestLoadConfigInvalidYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("invalid YAML should fail to load")
	}
}

func TestEnhanceParamsConversion(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.EnhanceParams()
	if p.TilesX != 8 || p.TilesY != 8 || p.ClipLimit != 0.01 {
		t.Errorf("enhance params = %+v, want 8x8 tiles with 0.01 clip", p)
	}
}
