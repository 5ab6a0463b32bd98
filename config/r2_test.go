package config

import (
	"strings"
	"testing"
)

func setFullR2Env(t *testing.T) {
	t.Helper()
	t.Setenv("R2_ENDPOINT", "accountid.r2.cloudflarestorage.com")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET", "swipevault")
}

func TestR2FromEnv(t *testing.T) {
	setFullR2Env(t)

	cfg, err := R2FromEnv()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Endpoint != "accountid.r2.cloudflarestorage.com" {
		t.Fatalf("unexpected endpoint %s", cfg.Endpoint)
	}
	if cfg.Region != "auto" {
		t.Fatalf("region should default to auto, got %s", cfg.Region)
	}
	if !cfg.UseSSL {
		t.Fatal("ssl should default to on")
	}
}

func TestR2FromEnvMissingRequired(t *testing.T) {
	required := []string{"R2_ENDPOINT", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET"}
	for _, name := range required {
		t.Run(name, func(t *testing.T) {
			setFullR2Env(t)
			t.Setenv(name, "")

			_, err := R2FromEnv()
			if err == nil {
				t.Fatalf("missing %s should fail", name)
			}
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("error should name the missing variable, got %v", err)
			}
		})
	}
}

func TestR2FromEnvOverrides(t *testing.T) {
	setFullR2Env(t)
	t.Setenv("R2_REGION", "wnam")
	t.Setenv("R2_USE_SSL", "false")

	cfg, err := R2FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "wnam" {
		t.Fatalf("region override ignored, got %s", cfg.Region)
	}
	if cfg.UseSSL {
		t.Fatal("ssl override ignored")
	}
}
