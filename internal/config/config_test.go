package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func loadFrom(t *testing.T, yaml string) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := loadFrom(t, "app:\n  base_url: http://localhost:3000/\n")

	if cfg.PDF.SignatureScale != 0.2 {
		t.Errorf("signature scale = %v, want 0.2", cfg.PDF.SignatureScale)
	}
	if diff := cmp.Diff(CoordsConfig{ScaleX: 1.65, ScaleY: 4}, cfg.Coords); diff != "" {
		t.Errorf("coords calibration mismatch (-want +got):\n%s", diff)
	}
	if cfg.Lock.Wait != 10*time.Second || cfg.Lock.TTL != 30*time.Second {
		t.Errorf("lock durations = %v/%v, want 30s/10s", cfg.Lock.TTL, cfg.Lock.Wait)
	}
	if cfg.Mail.RetryDelay != 5*time.Second || cfg.Mail.SendTimeout != 30*time.Second {
		t.Errorf("mail durations = %v/%v, want 5s/30s", cfg.Mail.RetryDelay, cfg.Mail.SendTimeout)
	}
	if cfg.Storage.FetchTimeout != 30*time.Second {
		t.Errorf("fetch timeout = %v, want 30s", cfg.Storage.FetchTimeout)
	}
	if cfg.Storage.Local.PublicURL != "http://localhost:3000/files" {
		t.Errorf("public url = %q", cfg.Storage.Local.PublicURL)
	}
	if cfg.Storage.OriginalFolder != "EasySign/Files" || cfg.Storage.SignedFolder != "EasySign/SignedDocs" {
		t.Errorf("folders = %q, %q", cfg.Storage.OriginalFolder, cfg.Storage.SignedFolder)
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Errorf("env = %q, want development", cfg.App.Env)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	cfg := loadFrom(t, `
app:
  env: production
  port: 8080
storage:
  driver: gcs
  gcs:
    bucket: easysign-docs
pdf:
  signature_scale: 0.5
lock:
  driver: memory
  wait: 2
mail:
  sign_link_base: https://sign.example.com
`)

	if cfg.App.Port != 8080 || !cfg.IsProduction() {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Storage.Driver != StorageDriverGCS || cfg.Storage.GCS.Bucket != "easysign-docs" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.PDF.SignatureScale != 0.5 {
		t.Errorf("signature scale = %v, want 0.5", cfg.PDF.SignatureScale)
	}
	if cfg.Lock.Driver != LockDriverMemory || cfg.Lock.Wait != 2*time.Second {
		t.Errorf("lock = %+v", cfg.Lock)
	}
	if cfg.Mail.SignLinkBase != "https://sign.example.com" {
		t.Errorf("sign link base = %q", cfg.Mail.SignLinkBase)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	cfg := loadFrom(t, "auth:\n  jwt_secret: from-file\n")

	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q, want value from environment", cfg.Auth.JWTSecret)
	}
}

func TestMissingConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())

	if _, err := NewConfig(); err == nil {
		t.Error("expected an error without config.yaml")
	}
}

func TestBodyLimitBytes(t *testing.T) {
	tests := []struct {
		mb   int
		want int
	}{
		{0, 25 << 20},
		{-3, 25 << 20},
		{5, 5 << 20},
		{100, 100 << 20},
	}
	for _, tt := range tests {
		cfg := &Config{App: AppConfig{BodyLimitMB: tt.mb}}
		if got := cfg.BodyLimitBytes(); got != tt.want {
			t.Errorf("BodyLimitBytes() with %d MB = %d, want %d", tt.mb, got, tt.want)
		}
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
