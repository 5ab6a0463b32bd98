package config

import (
	"fmt"
	"log"
	"sync"
)

// R2Config holds Cloudflare R2 (S3-compatible) connection settings.
// All values except Region are required; Region defaults to R2's "auto".
type R2Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
}

var r2Config *R2Config
var r2Once sync.Once

func loadR2Config() (*R2Config, error) {
	cfg := &R2Config{
		Endpoint:        getEnv("R2_ENDPOINT", ""),
		AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("R2_BUCKET", ""),
		Region:          getEnv("R2_REGION", "auto"),
		UseSSL:          getEnvBool("R2_USE_SSL", true),
	}
	required := map[string]string{
		"R2_ENDPOINT":          cfg.Endpoint,
		"R2_ACCESS_KEY_ID":     cfg.AccessKeyID,
		"R2_SECRET_ACCESS_KEY": cfg.SecretAccessKey,
		"R2_BUCKET":            cfg.Bucket,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("r2 config: %s is required", name)
		}
	}
	return cfg, nil
}

// R2 resolves the blob-store configuration once for the process lifetime.
// A missing required value is fatal at first use, not a per-request error.
func R2() *R2Config {
	r2Once.Do(func() {
		cfg, err := loadR2Config()
		if err != nil {
			log.Fatalln("r2 config error:", err)
		}
		r2Config = cfg
	})
	return r2Config
}

// R2FromEnv loads and validates R2 settings without the fatal-on-missing
// behavior. Used by config checks and tests.
func R2FromEnv() (*R2Config, error) {
	return loadR2Config()
}
