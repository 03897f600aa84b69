package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	original := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if original == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, original)
		}
	})
}

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		original := os.Getenv(key)
		os.Unsetenv(key)
		k := key
		t.Cleanup(func() {
			if original != "" {
				os.Setenv(k, original)
			}
		})
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t,
		"APP_NAME", "HTTP_PORT",
		"DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"STORE_BACKEND", "STORE_TIMEOUT", "STORE_RETENTION",
		"NSQD_TCP_ADDR", "NSQ_LOOKUP_HTTP_ADDR", "NSQ_CHANNEL", "NSQ_MAX_IN_FLIGHT",
		"SINK_KIND", "SINK_URL", "SINK_SECRET", "SINK_TIMEOUT",
	)

	cfg := FromEnv()

	if cfg.AppName != "notifyhub" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "notifyhub")
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "postgres")
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Errorf("Store.Timeout = %v, want 5s", cfg.Store.Timeout)
	}
	if cfg.Store.Retention != 0 {
		t.Errorf("Store.Retention = %v, want 0", cfg.Store.Retention)
	}
	if cfg.NSQ.Channel != "notifiers" {
		t.Errorf("NSQ.Channel = %q, want %q", cfg.NSQ.Channel, "notifiers")
	}
	if cfg.NSQ.MaxInFlight != 250 {
		t.Errorf("NSQ.MaxInFlight = %d, want 250", cfg.NSQ.MaxInFlight)
	}
	if cfg.Sink.Kind != "log" {
		t.Errorf("Sink.Kind = %q, want %q", cfg.Sink.Kind, "log")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	setEnv(t, "APP_NAME", "notifyhub-test")
	setEnv(t, "STORE_BACKEND", "redis")
	setEnv(t, "STORE_TIMEOUT", "750ms")
	setEnv(t, "STORE_RETENTION", "168h")
	setEnv(t, "REDIS_ADDR", "localhost:16379")
	setEnv(t, "NSQ_MAX_IN_FLIGHT", "1000")
	setEnv(t, "SINK_KIND", "http")
	setEnv(t, "SINK_URL", "http://localhost:9999/notify")

	cfg := FromEnv()

	if cfg.AppName != "notifyhub-test" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "notifyhub-test")
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "redis")
	}
	if cfg.Store.Timeout != 750*time.Millisecond {
		t.Errorf("Store.Timeout = %v, want 750ms", cfg.Store.Timeout)
	}
	if cfg.Store.Retention != 168*time.Hour {
		t.Errorf("Store.Retention = %v, want 168h", cfg.Store.Retention)
	}
	if cfg.Redis.Addr != "localhost:16379" {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, "localhost:16379")
	}
	if cfg.NSQ.MaxInFlight != 1000 {
		t.Errorf("NSQ.MaxInFlight = %d, want 1000", cfg.NSQ.MaxInFlight)
	}
	if cfg.Sink.Kind != "http" || cfg.Sink.URL != "http://localhost:9999/notify" {
		t.Errorf("Sink = %+v, want http sink override", cfg.Sink)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	setEnv(t, "NSQ_MAX_IN_FLIGHT", "not-a-number")
	setEnv(t, "STORE_TIMEOUT", "soon")

	cfg := FromEnv()

	if cfg.NSQ.MaxInFlight != 250 {
		t.Errorf("NSQ.MaxInFlight = %d, want default 250 on bad input", cfg.NSQ.MaxInFlight)
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Errorf("Store.Timeout = %v, want default 5s on bad input", cfg.Store.Timeout)
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DB: DB{User: "u", Pass: "p", Host: "h", Port: "5432", Name: "d"},
	}

	want := "postgres://u:p@h:5432/d?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
