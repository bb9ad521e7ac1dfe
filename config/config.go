package config

import (
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// DatabaseNode is one Postgres endpoint. Reads and writes may target different hosts.
type DatabaseNode struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}

// URL renders the node as a postgres:// DSN for database, escaping credentials.
func (n DatabaseNode) URL(database string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}

	if n.SSLMode != "" {
		query.Set("sslmode", n.SSLMode)
	}

	if n.Timezone != "" {
		query.Set("timezone", n.Timezone)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(n.Username, n.Password),
		Host:     net.JoinHostPort(n.Host, n.Port),
		Path:     database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
		Docs   bool   `envconfig:"DOCS_ENABLE"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret    string `envconfig:"ACCESS_SECRET"`
		AccessExpireMin int    `envconfig:"ACCESS_EXPIRE_MIN"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int          `envconfig:"MAX_RETRY"`
			RetryWaitTime  int          `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string       `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool         `envconfig:"AUTO_MIGRATE"`
			Prefix         string       `envconfig:"PREFIX"`
			Read           DatabaseNode `envconfig:"READ"`
			Write          DatabaseNode `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		TopicPrefix   string   `envconfig:"TOPIC_PREFIX"   default:"marketplace"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	// Commission is the process-wide default split applied to captured payments.
	Commission struct {
		PlatformFeePercentage float64 `envconfig:"PLATFORM_FEE_PERCENTAGE" default:"10"`
		ProviderPercentage    float64 `envconfig:"PROVIDER_PERCENTAGE"     default:"90"`
	} `envconfig:"COMMISSION"`

	Auction struct {
		ServiceFeeRate  float64 `envconfig:"SERVICE_FEE_RATE"  default:"0.10"`
		MinBidderRating float64 `envconfig:"MIN_BIDDER_RATING" default:"3.5"`
	} `envconfig:"AUCTION"`

	Reconcile struct {
		IntervalSeconds int `envconfig:"INTERVAL_SECONDS" default:"60"`
		BatchSize       int `envconfig:"BATCH_SIZE"       default:"50"`
	} `envconfig:"RECONCILE"`

	Relay struct {
		Enable           bool `envconfig:"ENABLE"`
		SubscriberBuffer int  `envconfig:"SUBSCRIBER_BUFFER" default:"16"`
	} `envconfig:"RELAY"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		Gateway struct {
			BaseURL         string `envconfig:"BASE_URL"`
			AccessToken     string `envconfig:"ACCESS_TOKEN"`
			NotificationURL string `envconfig:"NOTIFICATION_URL"`
			TimeoutSeconds  int    `envconfig:"TIMEOUT_SECONDS" default:"15"`
		} `envconfig:"GATEWAY"`
	}
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

// Init loads .env (when present) into the environment and decodes it once per process.
// A missing .env is reported but not fatal; malformed variables are.
func Init() (err error) {
	once.Do(func() {
		if err = godotenv.Load(".env"); err != nil {
			log.Warn().Err(err).Msg("No .env file loaded, reading the process environment only")
		}

		if procErr := envconfig.Process("", &conf); procErr != nil {
			log.Fatal().Err(procErr).Msg("Failed to decode configuration from environment")
		}

		initialized = true

		log.Info().Str("env", conf.Server.Env).Msg("Configuration loaded")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		_ = Init()
	}

	return &conf
}
