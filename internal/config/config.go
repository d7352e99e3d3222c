package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Detection DetectionConfig `mapstructure:"detection"`
	Transcode TranscodeConfig `mapstructure:"transcode"`
	Client    ClientConfig    `mapstructure:"client"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AWSConfig holds shared AWS client settings. Empty credentials fall back to
// the default provider chain (Lambda execution role, profile, env).
type AWSConfig struct {
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	SessionToken string `mapstructure:"session_token"`
}

// Store drivers for video and appearance records.
const (
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverGorm     = "gorm"
)

type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	Table    string `mapstructure:"table"`
	Endpoint string `mapstructure:"endpoint"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	}
	return d.Path
}

// StorageConfig describes the video bucket. The minio driver is for local
// stacks and uses its own static keys.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type DetectionConfig struct {
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
	RoleARN     string `mapstructure:"role_arn"`
	PageSize    int    `mapstructure:"page_size"`
}

type TranscodeConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	RoleARN     string `mapstructure:"role_arn"`
	FrameWidth  int    `mapstructure:"frame_width"`
	FrameHeight int    `mapstructure:"frame_height"`
}

// ClientConfig is used by the operator CLI to reach the HTTP ingress.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Names used by the deployed function's environment
	v.BindEnv("aws.region", "AWS_REGION")
	v.BindEnv("aws.access_key", "AWS_ACCESS_KEY_ID")
	v.BindEnv("aws.secret_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("aws.session_token", "AWS_SESSION_TOKEN")
	v.BindEnv("store.table", "DATA_TABLE")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("storage.bucket", "VIDEO_BUCKET")
	v.BindEnv("detection.sns_topic_arn", "SNS_TOPIC_ARN")
	v.BindEnv("detection.role_arn", "REKOGNITION_ROLE_ARN")
	v.BindEnv("transcode.endpoint", "MEDIACONVERT_ENDPOINT")
	v.BindEnv("transcode.role_arn", "MEDIACONVERT_ROLE_ARN")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("client.base_url", "FACETRAIL_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("store.driver", StoreDriverDynamoDB)
	v.SetDefault("store.table", "facetrail-data")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/facetrail.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "facetrail")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.driver", "s3")
	v.SetDefault("detection.page_size", 1000)
	v.SetDefault("transcode.endpoint", "https://mediaconvert.us-east-1.amazonaws.com")
	v.SetDefault("transcode.frame_width", 320)
	v.SetDefault("transcode.frame_height", 240)
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.timeout", 30*time.Second)
}

// ValidateProcessor checks the settings the event processor cannot run without.
func (c *Config) ValidateProcessor() error {
	var errs []error
	switch c.Store.Driver {
	case StoreDriverDynamoDB:
		if c.Store.Table == "" {
			errs = append(errs, errors.New("store.table is required for the dynamodb driver"))
		}
	case StoreDriverGorm:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required (VIDEO_BUCKET)"))
	}
	if c.Detection.SNSTopicARN == "" {
		errs = append(errs, errors.New("detection.sns_topic_arn is required (SNS_TOPIC_ARN)"))
	}
	if c.Detection.RoleARN == "" {
		errs = append(errs, errors.New("detection.role_arn is required (REKOGNITION_ROLE_ARN)"))
	}
	if c.Transcode.RoleARN == "" {
		errs = append(errs, errors.New("transcode.role_arn is required (MEDIACONVERT_ROLE_ARN)"))
	}
	return errors.Join(errs...)
}
