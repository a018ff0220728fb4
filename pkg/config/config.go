package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Supabase  SupabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Daily     DailyConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

// SupabaseConfig covers both the row store (PostgREST) and the auth admin
// user directory, which live behind the same base URL.
type SupabaseConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string
	TimeoutSec int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type DailyConfig struct {
	APIURL     string
	APIKey     string
	TimeoutSec int
}

type SchedulerConfig struct {
	AlertCheckInterval     time.Duration
	EmergencyCheckInterval time.Duration
	QueueDrainInterval     time.Duration
	QueueBatchSize         int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/respondr")

	viper.SetEnvPrefix("RESPONDR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("supabase.url", "http://localhost:54321")
	viper.SetDefault("supabase.timeoutSec", 15)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 60)

	viper.SetDefault("daily.apiURL", "https://api.daily.co/v1")
	viper.SetDefault("daily.timeoutSec", 10)

	viper.SetDefault("scheduler.alertCheckInterval", time.Hour)
	viper.SetDefault("scheduler.emergencyCheckInterval", time.Hour)
	viper.SetDefault("scheduler.queueDrainInterval", 30*time.Second)
	viper.SetDefault("scheduler.queueBatchSize", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
