// internal/config/config.go
//
// Environment-driven configuration. A .env file in the working directory is
// loaded first (if present); real environment variables win over it.
//
//   PORT              listen port                          (5175)
//   LOG_LEVEL         zerolog level                        (info)
//   LOG_PRETTY        "1"/"true" for console output        (off)
//   DB_PATH           sqlite file                          (./data/app.db)
//   JWT_SECRET        HS256 signing key                    (dev_secret_change_me)
//   JWT_EXPIRES_DAYS  token lifetime in days               (14)
//   COOKIE_NAME       auth cookie                          (digitmind_token)
//   CLIENT_ORIGIN     CORS origin                          (http://localhost:5173)
//   NODE_ENV          "production" enables Secure cookies
//   DAILY_SALT        daily secret HMAC key                (local_dev_salt)
//   DAILY_LEVEL       daily challenge level, 4..10         (10)
//   SESSION_TTL       keep finished sessions this long      (15m)
//   SESSION_IDLE_TTL  drop unfinished sessions idle this long (24h)

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/robalobadob/digitmind/internal/digits"
)

// Config is the resolved server configuration.
type Config struct {
	Port           string
	LogLevel       string
	LogPretty      bool
	DBPath         string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	DailySalt      string
	DailyLevel     int
	SessionTTL     time.Duration // 0 keeps finished sessions
	SessionIdleTTL time.Duration // 0 keeps idle sessions
}

// Error names the variable that failed to parse.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("config %s: %v", e.Key, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getBool("LOG_PRETTY"),
		DBPath:       getEnv("DB_PATH", "./data/app.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		CookieName:   getEnv("COOKIE_NAME", "digitmind_token"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
	}

	var err error
	if c.JWTExpiresDays, err = getInt("JWT_EXPIRES_DAYS", 14); err != nil {
		return nil, err
	}
	if c.DailyLevel, err = getInt("DAILY_LEVEL", digits.MaxLevel); err != nil {
		return nil, err
	}
	if err := digits.ValidateLevel(c.DailyLevel); err != nil {
		return nil, &Error{Key: "DAILY_LEVEL", Err: err}
	}
	if c.SessionTTL, err = getDuration("SESSION_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if c.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	return c, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &Error{Key: k, Err: err}
	}
	return n, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &Error{Key: k, Err: err}
	}
	if d < 0 {
		return 0, &Error{Key: k, Err: fmt.Errorf("negative duration %s", d)}
	}
	return d, nil
}

func getBool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
