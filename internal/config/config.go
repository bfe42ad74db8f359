package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Log        LogConfig
	Worker     WorkerConfig
	Grid       GridConfig
	Directory  DirectoryConfig
	Worlds     WorldsConfig
	Assets     AssetsConfig
	Retry      RetryConfig
	S3         S3Config
	History    HistoryConfig
	Auth       AuthConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Host string
	Port int `validate:"gte=0,lte=65535"`
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	MetadataTTL time.Duration
	RunLockTTL  time.Duration
	RunLock     bool
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	RunOnce           bool
	RunOnStart        bool
	Interval          time.Duration `validate:"gt=0"`
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	MonitorEnabled    bool
}

// GridConfig задаёт границы координатной сетки (включительно).
type GridConfig struct {
	MinCoord int
	MaxCoord int `validate:"gtefield=MinCoord"`
}

type DirectoryConfig struct {
	URL            string `validate:"required,url"`
	BatchPointers  int    `validate:"gt=0"`
	RequestTimeout time.Duration
	RequestDelay   time.Duration
}

type WorldsConfig struct {
	Enabled        bool
	URL            string
	BatchSize      int `validate:"gt=0"`
	BatchDelay     time.Duration
	RequestTimeout time.Duration
}

type AssetsConfig struct {
	BaseURL           string `validate:"required,url"`
	ProbeBatchSize    int    `validate:"gt=0"`
	ProbeBatchDelay   time.Duration
	ReportBatchSize   int `validate:"gt=0"`
	ReportBatchDelay  time.Duration
	ReportMaxAttempts int `validate:"gt=0"`
	RequestTimeout    time.Duration
	BreakerThreshold  uint32
	BreakerTimeout    time.Duration
}

type RetryConfig struct {
	MaxAttempts  int `validate:"gt=0"`
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	AssetBucket     string
	AssetPrefix     string
	ReportBucket    string
	ReportPrefix    string
	PublicURL       string
}

type HistoryConfig struct {
	Retention int `validate:"gt=0"`
}

type AuthConfig struct {
	UploadSecret     string
	MonitoringSecret string
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env необязателен: в контейнере всё приходит через окружение
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	setDefaults()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			MetadataTTL: time.Duration(viper.GetInt("METADATA_CACHE_TTL")) * time.Second,
			RunLockTTL:  time.Duration(viper.GetInt("RUN_LOCK_TTL")) * time.Second,
			RunLock:     viper.GetBool("RUN_LOCK_ENABLED"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			RunOnce:           viper.GetBool("WORKER_RUN_ONCE"),
			RunOnStart:        viper.GetBool("WORKER_RUN_ON_START"),
			Interval:          time.Duration(viper.GetInt("WORKER_INTERVAL")) * time.Second,
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
			MonitorEnabled:    viper.GetBool("WORKER_MONITOR_ENABLED"),
		},
		Grid: GridConfig{
			MinCoord: viper.GetInt("GRID_MIN_COORD"),
			MaxCoord: viper.GetInt("GRID_MAX_COORD"),
		},
		Directory: DirectoryConfig{
			URL:            viper.GetString("DIRECTORY_URL"),
			BatchPointers:  viper.GetInt("DIRECTORY_BATCH_POINTERS"),
			RequestTimeout: time.Duration(viper.GetInt("DIRECTORY_TIMEOUT")) * time.Second,
			RequestDelay:   time.Duration(viper.GetInt("DIRECTORY_REQUEST_DELAY")) * time.Millisecond,
		},
		Worlds: WorldsConfig{
			Enabled:        viper.GetBool("WORLDS_ENABLED"),
			URL:            viper.GetString("WORLDS_URL"),
			BatchSize:      viper.GetInt("WORLDS_BATCH_SIZE"),
			BatchDelay:     time.Duration(viper.GetInt("WORLDS_BATCH_DELAY")) * time.Millisecond,
			RequestTimeout: time.Duration(viper.GetInt("WORLDS_TIMEOUT")) * time.Second,
		},
		Assets: AssetsConfig{
			BaseURL:           viper.GetString("ASSET_BASE_URL"),
			ProbeBatchSize:    viper.GetInt("ASSET_PROBE_BATCH_SIZE"),
			ProbeBatchDelay:   time.Duration(viper.GetInt("ASSET_PROBE_DELAY")) * time.Millisecond,
			ReportBatchSize:   viper.GetInt("REPORT_BATCH_SIZE"),
			ReportBatchDelay:  time.Duration(viper.GetInt("REPORT_BATCH_DELAY")) * time.Millisecond,
			ReportMaxAttempts: viper.GetInt("REPORT_MAX_ATTEMPTS"),
			RequestTimeout:    time.Duration(viper.GetInt("ASSET_TIMEOUT")) * time.Second,
			BreakerThreshold:  viper.GetUint32("ASSET_BREAKER_THRESHOLD"),
			BreakerTimeout:    time.Duration(viper.GetInt("ASSET_BREAKER_TIMEOUT")) * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  viper.GetInt("RETRY_MAX_ATTEMPTS"),
			InitialDelay: time.Duration(viper.GetInt("RETRY_INITIAL_DELAY")) * time.Millisecond,
			MaxDelay:     time.Duration(viper.GetInt("RETRY_MAX_DELAY")) * time.Millisecond,
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			Region:          viper.GetString("S3_REGION"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			AssetBucket:     viper.GetString("S3_ASSET_BUCKET"),
			AssetPrefix:     viper.GetString("S3_ASSET_PREFIX"),
			ReportBucket:    viper.GetString("S3_REPORT_BUCKET"),
			ReportPrefix:    viper.GetString("S3_REPORT_PREFIX"),
			PublicURL:       viper.GetString("REPORT_PUBLIC_URL"),
		},
		History: HistoryConfig{
			Retention: viper.GetInt("HISTORY_RETENTION"),
		},
		Auth: AuthConfig{
			UploadSecret:     viper.GetString("UPLOAD_SECRET"),
			MonitoringSecret: viper.GetString("MONITORING_SECRET"),
		},
		Metrics: MetricsConfig{
			Addr: viper.GetString("METRICS_ADDR"),
		},
	}

	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "pipeline-monitor-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults выставляет значения, совпадающие с боевой конфигурацией пайплайна
func setDefaults() {
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("API_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	viper.SetDefault("METADATA_CACHE_TTL", 300)
	viper.SetDefault("RUN_LOCK_TTL", 4*60*60)

	viper.SetDefault("WORKER_INTERVAL", 12*60*60)
	viper.SetDefault("WORKER_RUN_ON_START", true)
	viper.SetDefault("WORKER_MONITOR_ENABLED", true)

	viper.SetDefault("GRID_MIN_COORD", -175)
	viper.SetDefault("GRID_MAX_COORD", 175)

	viper.SetDefault("DIRECTORY_URL", "https://peer.decentraland.org/content/entities/active")
	viper.SetDefault("DIRECTORY_BATCH_POINTERS", 50000)
	viper.SetDefault("DIRECTORY_TIMEOUT", 120)
	viper.SetDefault("DIRECTORY_REQUEST_DELAY", 100)

	viper.SetDefault("WORLDS_ENABLED", true)
	viper.SetDefault("WORLDS_URL", "https://worlds-content-server.decentraland.org/index")
	viper.SetDefault("WORLDS_BATCH_SIZE", 20)
	viper.SetDefault("WORLDS_BATCH_DELAY", 100)
	viper.SetDefault("WORLDS_TIMEOUT", 30)

	viper.SetDefault("ASSET_BASE_URL", "https://optimized-assets.dclexplorer.com/v1")
	viper.SetDefault("ASSET_PROBE_BATCH_SIZE", 10)
	viper.SetDefault("ASSET_PROBE_DELAY", 100)
	viper.SetDefault("REPORT_BATCH_SIZE", 20)
	viper.SetDefault("REPORT_BATCH_DELAY", 50)
	viper.SetDefault("REPORT_MAX_ATTEMPTS", 2)
	viper.SetDefault("ASSET_TIMEOUT", 10)
	viper.SetDefault("ASSET_BREAKER_THRESHOLD", 50)
	viper.SetDefault("ASSET_BREAKER_TIMEOUT", 30)

	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_INITIAL_DELAY", 1000)
	viper.SetDefault("RETRY_MAX_DELAY", 10000)

	viper.SetDefault("S3_REGION", "auto")
	viper.SetDefault("S3_ASSET_PREFIX", "v1/")
	viper.SetDefault("S3_REPORT_BUCKET", "reports")
	viper.SetDefault("S3_REPORT_PREFIX", "optimization-pipeline/")
	viper.SetDefault("REPORT_PUBLIC_URL", "https://reports.dclexplorer.com")

	viper.SetDefault("HISTORY_RETENTION", 60)
}

var validate = validator.New()

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
