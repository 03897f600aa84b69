package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type DB struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Store struct {
	Backend   string        // postgres | redis | memory
	Timeout   time.Duration // per-call bound on ledger operations
	Retention time.Duration // redis only; 0 = keep forever
}

type NSQ struct {
	NsqdTCPAddr    string // e.g. nsqd:4150
	LookupHTTPAddr string // e.g. http://nsqlookupd:4161
	Channel        string // NSQ channel shared by all consumer instances
	MaxInFlight    int
}

type Sink struct {
	Kind    string // log | http
	URL     string // http sink endpoint
	Secret  string // HMAC secret for http sink, empty = unsigned
	Timeout time.Duration
}

type Config struct {
	AppName  string
	HTTPPort string // metrics/health port, e.g. :8082
	DB       DB
	Redis    Redis
	Store    Store
	NSQ      NSQ
	Sink     Sink
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func FromEnv() Config {
	return Config{
		AppName:  getenv("APP_NAME", "notifyhub"),
		HTTPPort: getenv("HTTP_PORT", ":8082"),
		DB: DB{
			User: getenv("DB_USER", "postgres"),
			Pass: getenv("DB_PASS", "postgres"),
			Host: getenv("DB_HOST", "postgres"),
			Port: getenv("DB_PORT", "5432"),
			Name: getenv("DB_NAME", "notifyhub"),
		},
		Redis: Redis{
			Addr:     getenv("REDIS_ADDR", "redis:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Store: Store{
			Backend:   getenv("STORE_BACKEND", "postgres"),
			Timeout:   getenvDuration("STORE_TIMEOUT", 5*time.Second),
			Retention: getenvDuration("STORE_RETENTION", 0),
		},
		NSQ: NSQ{
			NsqdTCPAddr:    getenv("NSQD_TCP_ADDR", "nsqd:4150"),
			LookupHTTPAddr: getenv("NSQ_LOOKUP_HTTP_ADDR", "http://nsqlookupd:4161"),
			Channel:        getenv("NSQ_CHANNEL", "notifiers"),
			MaxInFlight:    getenvInt("NSQ_MAX_IN_FLIGHT", 250),
		},
		Sink: Sink{
			Kind:    getenv("SINK_KIND", "log"),
			URL:     getenv("SINK_URL", "http://fake-sink:8081/notify"),
			Secret:  getenv("SINK_SECRET", ""),
			Timeout: getenvDuration("SINK_TIMEOUT", 15*time.Second),
		},
	}
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Pass, c.DB.Host, c.DB.Port, c.DB.Name)
}
