package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GrantTTLHours != DefaultConfig().GrantTTLHours {
		t.Fatalf("GrantTTLHours = %d, want %d", cfg.GrantTTLHours, DefaultConfig().GrantTTLHours)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, "config.json"), `{"grant_ttl_hours": 2, "log_level": "debug"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GrantTTLHours != 2 {
		t.Fatalf("GrantTTLHours = %d, want 2", cfg.GrantTTLHours)
	}
	if cfg.GrantTTL() != 2*time.Hour {
		t.Fatalf("GrantTTL() = %v, want 2h", cfg.GrantTTL())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, "config.json"), `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestGrantTTL_Disabled(t *testing.T) {
	cfg := &Config{GrantTTLHours: 0}
	if cfg.GrantTTL() != 0 {
		t.Errorf("GrantTTL() = %v, want 0", cfg.GrantTTL())
	}

	var nilCfg *Config
	if nilCfg.GrantTTL() != 0 {
		t.Errorf("nil GrantTTL() = %v, want 0", nilCfg.GrantTTL())
	}
}

func TestBaseDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROMPTHIVE_HOME", dir)

	got, err := BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("BaseDir() = %q, want %q", got, dir)
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, filepath.Join(globalDir, "config.json"), `{"grant_ttl_hours": 48, "disabled_tools": ["prompt_delete"]}`)
	writeConfig(t, filepath.Join(repoRoot, ".prompthive", "config.json"), `{"grant_ttl_hours": 1, "disabled_tools": ["prompt_save"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.GrantTTLHours != 1 {
		t.Errorf("GrantTTLHours = %d, want 1 (repo override)", cfg.GrantTTLHours)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.GrantTTLHours != 720 {
		t.Errorf("GrantTTLHours = %d, want 720", cfg.GrantTTLHours)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".prompthive", "config.json"), `{"allowed_paths": ["/srv/prompts"]}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if len(cfg.AllowedPaths) != 1 || cfg.AllowedPaths[0] != "/srv/prompts" {
		t.Errorf("AllowedPaths = %v, want [/srv/prompts]", cfg.AllowedPaths)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
	if found := FindRepoConfig(""); found != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty string", found)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{GrantTTLHours: 10, DBMaxOpenConns: 5, LogLevel: "info"}
	overlay := &Config{GrantTTLHours: 3, LogLevel: " warn "}

	result := Merge(base, overlay)

	if result.GrantTTLHours != 3 {
		t.Errorf("GrantTTLHours = %d, want 3 (overlay)", result.GrantTTLHours)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if result.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", result.LogLevel)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{AllowUnsafePaths: true}, &Config{})
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"prompt_delete", " prompt_save "}}
	overlay := &Config{DisabledTools: []string{"prompt_save", "collection_add", ""}}

	result := Merge(base, overlay)

	want := []string{"prompt_delete", "prompt_save", "collection_add"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}
}
