package config

import (
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every setting the binaries read. Only this struct may be used to reach
// configuration values; nothing else reads the environment directly.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=bookkeeper"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpAllowedOrigins string        `env:"HTTP_ALLOWED_ORIGINS,default=*"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=10s"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST,default=localhost"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER,default=postgres"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME,default=bookkeeper"`
	PostgresSSLMode       string `env:"POSTGRES_SSLMODE,default=disable"`

	PostgresMaxOpenConns int `env:"POSTGRES_MAX_OPEN_CONNS,default=25"`
	PostgresMaxIdleConns int `env:"POSTGRES_MAX_IDLE_CONNS,default=5"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=bookkeeper:"`

	JwtSecret  string        `env:"JWT_SECRET"`
	JwtTTL     time.Duration `env:"JWT_TTL,default=168h"`
	BcryptCost int           `env:"BCRYPT_COST,default=10"`

	InvoiceNumberAttempts int           `env:"INVOICE_NUMBER_ATTEMPTS,default=5"`
	SummaryCacheTTL       time.Duration `env:"SUMMARY_CACHE_TTL,default=30s"`

	PromNamespace string `env:"PROM_NAMESPACE,default=bookkeeper"`

	QueueName              string        `env:"QUEUE_NAME,default=ledger-events"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=ledger-processor"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=processor"`
	QueueConsumers         int           `env:"QUEUE_CONSUMERS,default=2"`
	QueueWorkers           int           `env:"QUEUE_WORKERS,default=8"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=3"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=10"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`
}

// IsDev reports whether internal error details may be exposed to clients.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "local"
}

// AllowedOrigins splits HTTP_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.HttpAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// PostgresWrite is the connection config of the primary.
func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		Host:         c.PostgresWriteHost,
		Port:         c.PostgresWritePort,
		User:         c.PostgresWriteUser,
		Password:     c.PostgresWritePassword,
		Database:     c.PostgresWriteDatabase,
		SSLMode:      c.PostgresSSLMode,
		MaxOpenConns: c.PostgresMaxOpenConns,
		MaxIdleConns: c.PostgresMaxIdleConns,
	}
}

// PostgresRead is the connection config of the replica, falling back to the primary when no
// read host is set.
func (c *Config) PostgresRead() pg.Config {
	if c.PostgresReadHost == "" {
		return c.PostgresWrite()
	}
	return pg.Config{
		Host:         c.PostgresReadHost,
		Port:         c.PostgresReadPort,
		User:         c.PostgresReadUser,
		Password:     c.PostgresReadPassword,
		Database:     c.PostgresReadDatabase,
		SSLMode:      c.PostgresSSLMode,
		MaxOpenConns: c.PostgresMaxOpenConns,
		MaxIdleConns: c.PostgresMaxIdleConns,
	}
}

// RedisEnabled reports whether the event stream and the summary cache are available.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) Redis() *redis.Options {
	return &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: c.AppName,
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	}
}

// Queue is the ledger event stream shared by the API (publisher) and the processor (consumer).
func (c *Config) Queue() queue.QueueConfig {
	return queue.QueueConfig{
		Name:              c.QueueName,
		ConsumerGroup:     c.QueueConsumerGroup,
		ConsumerName:      c.QueueConsumerName,
		MaxRetries:        c.QueueMaxRetries,
		VisibilityTimeout: c.QueueVisibilityTimeout,
		PollInterval:      c.QueuePollInterval,
		BatchSize:         c.QueueBatchSize,
		MaxLen:            c.QueueMaxLen,
		EnableDLQ:         c.QueueEnableDLQ,
	}
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if c.JwtSecret == "" {
		if !c.IsDev() {
			return errors.New("JWT_SECRET is required outside dev/local")
		}
		logger.Warn("JWT_SECRET is empty, using an insecure development secret")
		c.JwtSecret = "dev-secret-change-me"
	}
	if c.InvoiceNumberAttempts <= 0 {
		c.InvoiceNumberAttempts = 5
	}

	config = c
	return nil
}

// Set replaces the loaded configuration; tests use it to avoid touching the environment.
func Set(c *Config) {
	config = c
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
