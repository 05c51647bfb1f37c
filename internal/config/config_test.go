package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("Port=%q, want %q", cfg.Port, defaultPort)
	}
	if cfg.DBPath != defaultDBPath {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, defaultDBPath)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development environment by default")
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level=%q, want info", cfg.Logging.Level)
	}
}

func TestLoad_DotEnvDoesNotOverwriteExistingEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("# local\nPORT=9090\nDB_PATH=\"from-file.db\"\nLOG_LEVEL=debug\n")
	if err := os.WriteFile(filepath.Join(dir, ".env"), content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("DB_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	// Unset so godotenv is allowed to fill them.
	os.Unsetenv("DB_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "7070" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "7070")
	}
	if cfg.DBPath != "from-file.db" {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, "from-file.db")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level=%q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("APP_ENV", "")
	os.Unsetenv("APP_ENV")
	t.Setenv("PROFILES_PATH", "")
	os.Unsetenv("PROFILES_PATH")

	content := []byte("app_env = \"production\"\nprofiles_path = \"profiles.hcl\"\n\n[log]\nformat = \"json\"\n")
	if err := os.WriteFile(filepath.Join(dir, "margin.toml"), content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.IsDev() {
		t.Fatalf("expected production environment from config file")
	}
	if cfg.ProfilesPath != "profiles.hcl" {
		t.Fatalf("ProfilesPath=%q, want profiles.hcl", cfg.ProfilesPath)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("Logging.Format=%q, want json", cfg.Logging.Format)
	}
}
