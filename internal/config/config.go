package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"ENV" env-default:"local"`
	Storage     Storage     `yaml:"storage"`
	Database    Database    `yaml:"database"`
	HTTPServer  HTTPServer  `yaml:"http_server"`
	Redis       Redis       `yaml:"redis"`
	Reservation Reservation `yaml:"reservation"`
	Auth        Auth        `yaml:"auth"`
	RateLimit   RateLimit   `yaml:"rate_limit"`
	Audit       Audit       `yaml:"audit"`
}

type Storage struct {
	// Driver is either "postgres" or "memory".
	Driver       string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	QueryTimeout time.Duration `yaml:"query_timeout" env-default:"3s"`
}

type Database struct {
	Host         string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User         string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password     string `yaml:"password" env:"DB_PASSWORD"`
	DBName       string `yaml:"dbname" env:"DB_NAME" env-default:"ticket_booker"`
	SSLMode      string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns int    `yaml:"max_open_conns" env-default:"25"`
	MaxIdleConns int    `yaml:"max_idle_conns" env-default:"25"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Redis struct {
	Addr          string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password      string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB            int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	LockTTL       time.Duration `yaml:"lock_ttl" env-default:"5s"`
	RetryInterval time.Duration `yaml:"retry_interval" env-default:"10ms"`
}

type Reservation struct {
	// Lock selects the per-event guard: "local", "redis" or "none".
	Lock      string        `yaml:"lock" env:"RESERVATION_LOCK" env-default:"local"`
	OpTimeout time.Duration `yaml:"op_timeout" env-default:"2s"`
}

type Auth struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env-default:"24h"`
	// AdminSignup lets /register create admins.
	AdminSignup bool `yaml:"admin_signup" env:"AUTH_ADMIN_SIGNUP" env-default:"false"`
}

type RateLimit struct {
	Enabled bool    `yaml:"enabled" env-default:"true"`
	RPS     float64 `yaml:"rps" env-default:"2"`
	Burst   int     `yaml:"burst" env-default:"4"`
}

type Audit struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	Interval time.Duration `yaml:"interval" env-default:"1m"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	return &cfg
}

// Validate checks settings that are only wrong in combination.
func (c *Config) Validate() error {
	var errs []error

	switch c.Reservation.Lock {
	case "local", "none":
	case "redis":
		// a key that expires before the operation's deadline lets a second
		// holder in while the first is still running
		if c.Redis.LockTTL <= c.Reservation.OpTimeout {
			errs = append(errs, fmt.Errorf(
				"redis.lock_ttl (%s) must be greater than reservation.op_timeout (%s)",
				c.Redis.LockTTL, c.Reservation.OpTimeout,
			))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown reservation.lock %q", c.Reservation.Lock))
	}

	if c.Reservation.OpTimeout <= 0 {
		errs = append(errs, errors.New("reservation.op_timeout must be positive"))
	}

	return errors.Join(errs...)
}

// fetchConfigPath takes the path from the -config flag, falling back to CONFIG_PATH.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
