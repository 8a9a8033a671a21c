package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/example/vacation-approval/internal/logging"
)

// Storage backends accepted by VACATION_STORAGE.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config captures environment driven configuration values for the vacation service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	Storage           string
	JWTSecret         string
	SessionTTL        time.Duration
	TemporaryPassword string
	Seed              bool
	Location          *time.Location
	LogLevel          string
	LogFormat         string
	CORSOrigins       []string
	LoginRate         float64
	LoginBurst        int
}

// LoadFile reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Every missing or malformed key is
// collected so the operator sees them all in one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:vacation.db",
		Storage:           StorageSQLite,
		SessionTTL:        12 * time.Hour,
		TemporaryPassword: "a123456!",
		LogLevel:          "info",
		LogFormat:         "json",
		LoginRate:         1,
		LoginBurst:        10,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := lookup("VACATION_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "VACATION_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := lookup("VACATION_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if storage := strings.ToLower(lookup("VACATION_STORAGE")); storage != "" {
		switch storage {
		case StorageSQLite, StorageMemory:
			cfg.Storage = storage
		default:
			invalid = append(invalid, "VACATION_STORAGE")
		}
	}

	if secret := lookup("VACATION_JWT_SECRET"); secret == "" {
		missing = append(missing, "VACATION_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if ttlValue := lookup("VACATION_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "VACATION_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if temp := lookup("VACATION_TEMP_PASSWORD"); temp != "" {
		cfg.TemporaryPassword = temp
	}

	if seedValue := lookup("VACATION_SEED"); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "VACATION_SEED")
		} else {
			cfg.Seed = seed
		}
	}

	zone := lookup("VACATION_TIMEZONE")
	if zone == "" {
		zone = "Asia/Seoul"
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "VACATION_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if level := strings.ToLower(lookup("VACATION_LOG_LEVEL")); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			invalid = append(invalid, "VACATION_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if format := strings.ToLower(lookup("VACATION_LOG_FORMAT")); format != "" {
		switch format {
		case "json", "text":
			cfg.LogFormat = format
		default:
			invalid = append(invalid, "VACATION_LOG_FORMAT")
		}
	}

	if origins := lookup("VACATION_CORS_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	if rateValue := lookup("VACATION_LOGIN_RATE"); rateValue != "" {
		limit, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || limit < 0 {
			invalid = append(invalid, "VACATION_LOGIN_RATE")
		} else {
			cfg.LoginRate = limit
		}
	}

	if burstValue := lookup("VACATION_LOGIN_BURST"); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "VACATION_LOGIN_BURST")
		} else {
			cfg.LoginBurst = burst
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
