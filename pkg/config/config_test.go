package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	original := DefaultConfig()
	original.Speller.NBest = 5
	original.Speller.Beam = 3.5
	original.UserDict.Enabled = true
	original.UserDict.RedisAddr = "redis:6379"

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Speller.NBest != 5 || loaded.Speller.Beam != 3.5 {
		t.Errorf("speller section = %+v, want NBest 5 Beam 3.5", loaded.Speller)
	}
	if !loaded.UserDict.Enabled || loaded.UserDict.RedisAddr != "redis:6379" {
		t.Errorf("userdict section = %+v", loaded.UserDict)
	}
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Speller.NBest != DefaultConfig().Speller.NBest {
		t.Errorf("fresh config NBest = %d, want default %d", cfg.Speller.NBest, DefaultConfig().Speller.NBest)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestPartialParseRecoversValidSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[speller]
n_best = 3
beam = 2
case_handling = false

[server]
max_n_best = "not a number"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Speller.NBest != 3 {
		t.Errorf("n_best = %d, want 3 from the valid section", cfg.Speller.NBest)
	}
	if cfg.Speller.Beam != 2 {
		t.Errorf("beam = %v, want 2 coerced from integer", cfg.Speller.Beam)
	}
	if cfg.Speller.CaseHandling {
		t.Error("case_handling = true, want false from file")
	}
	if cfg.Server.TimeoutMS != DefaultConfig().Server.TimeoutMS {
		t.Errorf("timeout_ms = %d, want the default preserved", cfg.Server.TimeoutMS)
	}
}

func TestUpdatePersistsBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	nBest := 7
	beam := 4.5
	if err := cfg.Update(path, &nBest, nil, &beam, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after Update: %v", err)
	}
	if loaded.Speller.NBest != 7 || loaded.Speller.Beam != 4.5 {
		t.Errorf("persisted speller section = %+v, want NBest 7 Beam 4.5", loaded.Speller)
	}
	if loaded.Speller.MaxWeight != DefaultConfig().Speller.MaxWeight {
		t.Errorf("max_weight = %v, want the default left untouched", loaded.Speller.MaxWeight)
	}
}

func TestGetActiveConfigPath(t *testing.T) {
	if got := GetActiveConfigPath("some/relative/config.toml"); !filepath.IsAbs(got) {
		t.Errorf("relative path resolved to %q, want an absolute path", got)
	}
	abs := filepath.Join(t.TempDir(), "config.toml")
	if got := GetActiveConfigPath(abs); got != abs {
		t.Errorf("GetActiveConfigPath(%q) = %q, want it unchanged", abs, got)
	}
}
