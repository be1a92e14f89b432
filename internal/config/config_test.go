package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvKeyStorageDirectory, EnvKeyFileExtension, EnvKeyFileMode,
		EnvLogLevel, EnvLogPath, EnvJSONLog, EnvKey,
	} {
		t.Setenv(name, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() unexpected error: %v", err)
	}

	cwd, _ := os.Getwd()
	if cfg.KeyStorageDirectory != cwd {
		t.Errorf("KeyStorageDirectory = %q, want %q", cfg.KeyStorageDirectory, cwd)
	}
	if cfg.KeyFileExtension != "nkey" {
		t.Errorf("KeyFileExtension = %q, want nkey", cfg.KeyFileExtension)
	}
	if cfg.KeyFileMode != 0o600 {
		t.Errorf("KeyFileMode = %o, want 0600", cfg.KeyFileMode)
	}
	if len(cfg.Warnings) != 2 {
		t.Errorf("Warnings = %v, want two fallback warnings", cfg.Warnings)
	}
}

func TestFromEnv_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv("NC_TEST_HOME", "/srv/nc")
	t.Setenv(EnvKeyStorageDirectory, "$NC_TEST_HOME/keys")
	t.Setenv(EnvKeyFileExtension, ".key")
	t.Setenv(EnvKeyFileMode, "0640")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvJSONLog, "1")
	t.Setenv(EnvKey, "  5/abc  ")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() unexpected error: %v", err)
	}

	if cfg.KeyStorageDirectory != "/srv/nc/keys" {
		t.Errorf("KeyStorageDirectory = %q", cfg.KeyStorageDirectory)
	}
	if cfg.KeyFileExtension != "key" {
		t.Errorf("KeyFileExtension = %q", cfg.KeyFileExtension)
	}
	if cfg.KeyFileMode != 0o640 {
		t.Errorf("KeyFileMode = %o", cfg.KeyFileMode)
	}
	if cfg.LogLevel != "debug" || !cfg.JSONLog {
		t.Errorf("log settings = %q, %v", cfg.LogLevel, cfg.JSONLog)
	}
	if cfg.Key != "5/abc" {
		t.Errorf("Key = %q", cfg.Key)
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "0640") {
		t.Errorf("Warnings = %v, want the group-readable warning", cfg.Warnings)
	}

	ks := cfg.KeyStoreConfig()
	if ks.Directory != "/srv/nc/keys" || ks.Extension != "key" || ks.FileMode != 0o640 {
		t.Errorf("KeyStoreConfig() = %+v", ks)
	}
}

func TestFromEnv_BadMode(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvKeyFileMode, "rwx")

	if _, err := FromEnv(); err == nil {
		t.Error("expected error for bad KEY_FILE_MODE")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override set variables, and t.Setenv("") counts as set.
	os.Unsetenv(EnvKeyStorageDirectory)
	os.Unsetenv(EnvKeyFileExtension)

	dir := t.TempDir()
	envFile := filepath.Join(dir, "numeracrypt.env")
	content := "KEY_STORAGE_DIRECTORY=" + filepath.Join(dir, "keys") + "\nKEY_FILE_EXTENSION=secret\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv(EnvKeyStorageDirectory)
		os.Unsetenv(EnvKeyFileExtension)
	})

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.KeyStorageDirectory != filepath.Join(dir, "keys") {
		t.Errorf("KeyStorageDirectory = %q", cfg.KeyStorageDirectory)
	}
	if cfg.KeyFileExtension != "secret" {
		t.Errorf("KeyFileExtension = %q", cfg.KeyFileExtension)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}
