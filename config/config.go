// Initializing common application configuration
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Rabbit    RabbitConfig    `mapstructure:"rabbit"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	AppVersion  string        `mapstructure:"app_version"`
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Env         string        `mapstructure:"environment"`
	Mode        string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`

	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Enabled  bool          `mapstructure:"enabled"`
}

type RabbitConfig struct {
	URL           string `mapstructure:"url"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	ExchangeName  string `mapstructure:"exchange_name"`
	QueueName     string `mapstructure:"queue_name"`
	PrefetchCount int    `mapstructure:"prefetch_count"`
}

type GeneratorConfig struct {
	ReadTimeout time.Duration `mapstructure:"read_timeout"` // bounded wait on slot lookups
}

type WorkerConfig struct {
	CloseInterval time.Duration `mapstructure:"close_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

// AMQPURL builds the broker URL from host credentials unless a full URL is
// configured.
func (c *RabbitConfig) AMQPURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.Username, c.Password, c.Host, c.Port)
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	if err := viperInstance.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "slotservice_user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "slotservice")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.cache_ttl", 30*time.Second)
	v.SetDefault("redis.enabled", true)

	// Rabbit defaults
	v.SetDefault("rabbit.host", "localhost")
	v.SetDefault("rabbit.port", 5672)
	v.SetDefault("rabbit.username", "guest")
	v.SetDefault("rabbit.password", "guest")
	v.SetDefault("rabbit.exchange_name", "parkgolf.slots")
	v.SetDefault("rabbit.queue_name", "slot-service.commands")
	v.SetDefault("rabbit.prefetch_count", 32)

	// Generator defaults
	v.SetDefault("generator.read_timeout", 5*time.Second)

	// Worker defaults
	v.SetDefault("worker.close_interval", 30*time.Minute)
	v.SetDefault("worker.batch_size", 100)
}

// GetEnv returns an environment variable with a fallback value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
