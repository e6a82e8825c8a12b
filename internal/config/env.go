package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config with env tags. The signing secret, DSN and bucket
// identity are expected to arrive from the environment in deployments; flags
// and JSON are conveniences for development.
type envConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	SecretKey       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL"`
	S3AccessKey     string        `env:"S3_ACCESS_KEY"`
	S3SecretKey     string        `env:"S3_SECRET_KEY"`
	S3Bucket        string        `env:"S3_BUCKET"`
	S3Region        string        `env:"S3_REGION"`
	S3BaseEndpoint  string        `env:"S3_BASE_ENDPOINT"`
	S3PublicBaseURL string        `env:"S3_PUBLIC_BASE_URL"`
	MailDriver      string        `env:"MAIL_DRIVER"`
	MailFrom        string        `env:"MAIL_FROM"`
	MailRegion      string        `env:"MAIL_REGION"`
}

// parseEnv overlays environment variables onto config. Unset variables leave
// the current values untouched.
func parseEnv(config *Config) {
	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.HTTPAddr != "" {
		config.HTTPAddr = e.HTTPAddr
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.SecretKey != "" {
		config.SecretKey = e.SecretKey
	}
	if e.AccessTokenTTL != 0 {
		config.AccessTokenTTL = e.AccessTokenTTL
	}
	if e.RefreshTokenTTL != 0 {
		config.RefreshTokenTTL = e.RefreshTokenTTL
	}
	if e.PublicBaseURL != "" {
		config.PublicBaseURL = e.PublicBaseURL
	}
	if e.S3AccessKey != "" {
		config.S3AccessKey = e.S3AccessKey
	}
	if e.S3SecretKey != "" {
		config.S3SecretKey = e.S3SecretKey
	}
	if e.S3Bucket != "" {
		config.S3Bucket = e.S3Bucket
	}
	if e.S3Region != "" {
		config.S3Region = e.S3Region
	}
	if e.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = e.S3BaseEndpoint
	}
	if e.S3PublicBaseURL != "" {
		config.S3PublicBaseURL = e.S3PublicBaseURL
	}
	if e.MailDriver != "" {
		config.MailDriver = e.MailDriver
	}
	if e.MailFrom != "" {
		config.MailFrom = e.MailFrom
	}
	if e.MailRegion != "" {
		config.MailRegion = e.MailRegion
	}
}
