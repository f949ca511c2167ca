package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	CutoffModeDay     = "day"
	CutoffModeRolling = "rolling"

	NotifierSNS     = "sns"
	NotifierWebhook = "webhook"
	NotifierLog     = "log"

	BackendS3    = "s3"
	BackendMinIO = "minio"

	DefaultRegion = "us-east-1"
)

// Settings is the environment-level configuration of the checker.
type Settings struct {
	ConfigPath     string `mapstructure:"config_path" validate:"required"`
	TimezoneOffset int    `mapstructure:"timezone_offset" validate:"gte=-12,lte=14"`
	CutoffMode     string `mapstructure:"cutoff_mode" validate:"oneof=day rolling"`

	Notifier    string `mapstructure:"notifier" validate:"oneof=sns webhook log"`
	SNSTopicARN string `mapstructure:"sns_topic_arn" validate:"required_if=Notifier sns"`
	WebhookURL  string `mapstructure:"webhook_url" validate:"required_if=Notifier webhook,omitempty,url"`

	StorageBackend string `mapstructure:"storage_backend" validate:"required"`
	AWSProfile     string `mapstructure:"aws_profile"`
	AWSRegion      string `mapstructure:"aws_region"`
	AWSMaxAttempts int    `mapstructure:"aws_max_attempts" validate:"gte=1"`
	S3Endpoint     string `mapstructure:"s3_endpoint" validate:"omitempty,url"`

	MinIOEndpoint  string `mapstructure:"minio_endpoint" validate:"required_if=StorageBackend minio"`
	MinIOAccessKey string `mapstructure:"minio_access_key" validate:"required_if=StorageBackend minio"`
	MinIOSecretKey string `mapstructure:"minio_secret_key" validate:"required_if=StorageBackend minio"`
	MinIOUseSSL    bool   `mapstructure:"minio_use_ssl"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`

	Schedule       string        `mapstructure:"schedule" validate:"required"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	PushgatewayURL string        `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	RunTimeout     time.Duration `mapstructure:"run_timeout" validate:"gt=0"`
}

var defaults = map[string]any{
	"config_path":      "./config.json",
	"timezone_offset":  0,
	"cutoff_mode":      CutoffModeRolling,
	"notifier":         NotifierSNS,
	"sns_topic_arn":    "",
	"webhook_url":      "",
	"storage_backend":  BackendS3,
	"aws_profile":      "",
	"aws_region":       DefaultRegion,
	"aws_max_attempts": 3,
	"s3_endpoint":      "",
	"minio_endpoint":   "",
	"minio_access_key": "",
	"minio_secret_key": "",
	"minio_use_ssl":    true,
	"log_level":        "info",
	"log_format":       "json",
	"schedule":         "0 0 8 * * *",
	"listen_addr":      ":8080",
	"pushgateway_url":  "",
	"run_timeout":      "5m",
}

// deliveryFields are only needed once storage or notification clients are
// built. Commands that stay offline load settings without them.
var deliveryFields = []string{
	"Notifier",
	"SNSTopicARN",
	"WebhookURL",
	"StorageBackend",
	"S3Endpoint",
	"MinIOEndpoint",
	"MinIOAccessKey",
	"MinIOSecretKey",
}

// LoadSettings reads settings from the process environment. Notifier and
// storage settings are checked later by ValidateDelivery.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if err := validator.New().StructExcept(s, deliveryFields...); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// ValidateDelivery checks the notifier and storage settings. The backend name
// itself is resolved against the storage registry.
func (s *Settings) ValidateDelivery() error {
	if err := validator.New().StructPartial(s, deliveryFields...); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Location returns the fixed zone described by TimezoneOffset.
func (s *Settings) Location() *time.Location {
	return FixedZone(s.TimezoneOffset)
}

func FixedZone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*int(time.Hour/time.Second))
}
