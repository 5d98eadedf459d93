package config

import (
	"fmt"
	"time"
)

// Validate reports configuration that cannot start a server for the selected store driver.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for STORE_DRIVER=mongo")
		}
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid port %d", c.ServerPort)
	}
	for _, d := range []struct {
		env string
		val time.Duration
	}{
		{"REQUEST_TIMEOUT", c.RequestTimeout},
		{"STORE_TIMEOUT", c.StoreTimeout},
		{"READY_INTERVAL", c.ReadyInterval},
		{"ACCESS_TTL", c.AccessTTL},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.env, d.val)
		}
	}
	return nil
}

func (s SMTP) Configured() bool {
	return s.User != "" && s.Password != ""
}

func (s SMTP) Sender(siteName string) string {
	if s.From != "" {
		return s.From
	}
	if s.User != "" {
		return s.User
	}
	return fmt.Sprintf("%q <noreply@drone.com>", siteName)
}
