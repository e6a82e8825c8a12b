package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopcore/identity/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. Duration fields accept strings such as "1h30m".
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files; after unmarshalling, non-empty fields are copied into the runtime
// Config.
type JsonConfig struct {
	HTTPAddr        string   `json:"http_addr"`
	DatabaseDSN     string   `json:"database_dsn"`
	SecretKey       string   `json:"secret_key"`
	AccessTokenTTL  duration `json:"access_token_ttl"`
	RefreshTokenTTL duration `json:"refresh_token_ttl"`
	PublicBaseURL   string   `json:"public_base_url"`
	S3AccessKey     string   `json:"s3_access_key"`
	S3SecretKey     string   `json:"s3_secret_key"`
	S3Bucket        string   `json:"s3_bucket"`
	S3Region        string   `json:"s3_region"`
	S3BaseEndpoint  string   `json:"s3_base_endpoint"`
	S3PublicBaseURL string   `json:"s3_public_base_url"`
	MailDriver      string   `json:"mail_driver"`
	MailFrom        string   `json:"mail_from"`
	MailRegion      string   `json:"mail_region"`
}

// duration wraps time.Duration so JSON files can carry values as either
// a duration string ("15m") or integer nanoseconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return &json.UnsupportedTypeError{}
	}
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.PublicBaseURL != "" {
		config.PublicBaseURL = c.PublicBaseURL
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.S3PublicBaseURL != "" {
		config.S3PublicBaseURL = c.S3PublicBaseURL
	}
	if c.MailDriver != "" {
		config.MailDriver = c.MailDriver
	}
	if c.MailFrom != "" {
		config.MailFrom = c.MailFrom
	}
	if c.MailRegion != "" {
		config.MailRegion = c.MailRegion
	}
}
