package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"greek-irini/internal/storage"
)

type Config struct {
	Server struct {
		Port               string `yaml:"port"`
		BaseURL            string `yaml:"baseURL"`
		ShutdownTimeoutSec int    `yaml:"shutdownTimeoutSec"`
	} `yaml:"server"`
	Database struct {
		Driver     string `yaml:"driver"` // postgres (lib/pq) or pgx
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"name"`
		SSLMode    string `yaml:"sslMode"`
		MaxRetries int    `yaml:"maxRetries"`
	} `yaml:"database"`
	Redis struct {
		Host        string `yaml:"host"`
		Port        string `yaml:"port"`
		SessionTTLH int    `yaml:"sessionTTLHours"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic"`
		GroupPrefix string   `yaml:"groupPrefix"`
	} `yaml:"kafka"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`
	Checkout struct {
		PaymentSuccessRate float64 `yaml:"paymentSuccessRate"`
		PaymentDelayMs     int     `yaml:"paymentDelayMs"`
		PrintDelayMs       int     `yaml:"printDelayMs"`
		StrictTransitions  bool    `yaml:"strictTransitions"`
	} `yaml:"checkout"`
	Analytics struct {
		TaxRate float64 `yaml:"taxRate"` // percent, included in prices
	} `yaml:"analytics"`
	Logging struct {
		Level  string `yaml:"level"` // trace, debug, info, warn, error, fatal, panic
		Format string `yaml:"format"`
		Path   string `yaml:"path"`
	} `yaml:"logging"`
}

func Default() Config {
	var c Config
	c.Server.Port = "8080"
	c.Server.BaseURL = "http://localhost:3000"
	c.Server.ShutdownTimeoutSec = 10
	c.Database.Driver = "postgres"
	c.Database.Port = "5432"
	c.Database.SSLMode = "disable"
	c.Database.MaxRetries = 10
	c.Redis.Host = "localhost"
	c.Redis.Port = "6379"
	c.Redis.SessionTTLH = 24
	c.Kafka.Topic = "irini.changes"
	c.Kafka.GroupPrefix = "irini"
	c.RabbitMQ.Exchange = "irini.email"
	c.Checkout.PaymentSuccessRate = 0.9
	c.Checkout.PaymentDelayMs = 2000
	c.Checkout.PrintDelayMs = 2500
	c.Analytics.TaxRate = 9
	c.Logging.Level = "info"
	c.Logging.Format = "text"
	return c
}

// Load reads path (a missing file is fine), then .env, then the process
// environment. Later sources win.
func Load(path string) (Config, error) {
	conf := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return conf, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, &conf); err != nil {
				return conf, fmt.Errorf("cant unmarshal config %s: %w", path, err)
			}
		}
	}
	_ = godotenv.Load()
	conf.applyEnv(os.Getenv)
	return conf, conf.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Server.BaseURL, "BASE_URL")
	set(&c.Database.Driver, "DB_DRIVER")
	set(&c.Database.Host, "DB_HOST")
	set(&c.Database.Port, "DB_PORT")
	set(&c.Database.User, "DB_USER")
	set(&c.Database.Password, "DB_PASSWORD")
	set(&c.Database.Name, "DB_NAME")
	set(&c.Redis.Host, "REDIS_HOST")
	set(&c.Redis.Port, "REDIS_PORT")
	set(&c.RabbitMQ.URL, "RABBITMQ_URL")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Logging.Level, "LOG_LEVEL")
	if v := getenv("KAFKA_BROKER"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("PAYMENT_SUCCESS_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.Checkout.PaymentSuccessRate = rate
		}
	}
	if v := getenv("STRICT_TRANSITIONS"); v != "" {
		c.Checkout.StrictTransitions, _ = strconv.ParseBool(v)
	}
}

func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port must be set")
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("unknown database driver %q: want postgres or pgx", c.Database.Driver)
	}
	if c.Checkout.PaymentSuccessRate < 0 || c.Checkout.PaymentSuccessRate > 1 {
		return errors.New("payment success rate must be within [0, 1]")
	}
	if c.Checkout.PaymentDelayMs < 0 || c.Checkout.PrintDelayMs < 0 {
		return errors.New("checkout delays must be >= 0")
	}
	if c.Analytics.TaxRate < 0 || c.Analytics.TaxRate >= 100 {
		return errors.New("tax rate must be within [0, 100)")
	}
	if c.Redis.SessionTTLH <= 0 {
		return errors.New("session ttl must be > 0 hours")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka topic must be set when brokers are configured")
	}
	return nil
}

func (c Config) HasDatabase() bool { return c.Database.Host != "" }

func (c Config) PaymentDelay() time.Duration {
	return time.Duration(c.Checkout.PaymentDelayMs) * time.Millisecond
}

func (c Config) PrintDelay() time.Duration {
	return time.Duration(c.Checkout.PrintDelayMs) * time.Millisecond
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Redis.SessionTTLH) * time.Hour
}

// DSN renders the connection string for the configured driver.
func (c Config) DSN() string {
	d := c.Database
	if d.Driver == "pgx" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
	}
	return "host=" + d.Host + " port=" + d.Port + " user=" + d.User +
		" password=" + d.Password + " dbname=" + d.Name + " sslmode=" + d.SSLMode
}

// ConnectDB opens the record store and pings it until it answers or the
// retries run out.
func ConnectDB(ctx context.Context, c Config) (*sql.DB, error) {
	db, err := sql.Open(c.Database.Driver, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	retries := c.Database.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 1; i <= retries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		log.WithError(err).WithField("attempt", i).Warn("database not ready")
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	db.Close()
	return nil, fmt.Errorf("ping database after %d attempts: %w", retries, err)
}

func MustInitRedis(c Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: c.Redis.Host + ":" + c.Redis.Port,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(c Config, groupID string) *kafka.Reader {
	return kafka.NewReader(storage.ChangeReaderConfig(c.Kafka.Brokers, c.Kafka.Topic, groupID))
}

func NewKafkaWriter(c Config) *kafka.Writer {
	return storage.NewChangeWriter(c.Kafka.Brokers, c.Kafka.Topic)
}

func DialRabbitMQ(c Config) (*amqp.Connection, error) {
	conn, err := amqp.Dial(c.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return conn, nil
}
