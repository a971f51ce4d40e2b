package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int

	// Seed* creates or promotes an administrator at admin startup when set.
	SeedEmail    string
	SeedPassword string
	SeedName     string

	// ReconcileCron schedules the orphan order item purge; empty disables it.
	ReconcileCron     string
	ReconcileAfterMin int
}

type App struct {
	Name      string
	Env       string
	APIPrefix string
	HTTP      HTTP
	Admin     AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttlSec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir           string
	PublicBaseURL string
	MaxFileMB     int
	MaxGallery    int
}

type Order struct {
	Transactional bool
	DefaultStatus string
}

type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	QueueWaitMs int
	MaxBodyMB   int64
	TimeoutSec  int
	LoginRPS    float64
	LoginBurst  int
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Upload Upload
	Order  Order
	Limits Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "online-shop")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.apiPrefix", "/api/v1")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.admin.seedEmail", "")
	v.SetDefault("app.admin.seedPassword", "")
	v.SetDefault("app.admin.seedName", "admin")
	v.SetDefault("app.admin.reconcileCron", "@every 15m")
	v.SetDefault("app.admin.reconcileAfterMin", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "online-shop")
	v.SetDefault("jwt.accessTokenTTLMin", 60*24)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:online-shop.db")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttlSec", 300)

	v.SetDefault("upload.dir", "public/uploads")
	v.SetDefault("upload.publicBaseURL", "")
	v.SetDefault("upload.maxFileMB", 5)
	v.SetDefault("upload.maxGallery", 10)

	v.SetDefault("order.transactional", true)
	v.SetDefault("order.defaultStatus", "Pending")

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.queueWaitMs", 200)
	v.SetDefault("limits.maxBodyMB", 64)
	v.SetDefault("limits.timeoutSec", 10)
	v.SetDefault("limits.loginRPS", 1)
	v.SetDefault("limits.loginBurst", 5)
}

// Parse reads the yaml file at path and applies APP_* environment overrides.
func Parse(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Upload.PublicBaseURL == "" {
		host := c.App.HTTP.Host
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		c.Upload.PublicBaseURL = fmt.Sprintf("http://%s:%d/public/uploads", host, c.App.HTTP.Port)
	}
	c.Upload.PublicBaseURL = strings.TrimRight(c.Upload.PublicBaseURL, "/")
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required (APP_JWT_SECRET)")
	}
	return &c, nil
}

func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	c, err := Parse(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}
