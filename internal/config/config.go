package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8222"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir              string        // directory holding servers.txt, admins.txt, commands.txt
	PolicyFile           string        // path to the command policy yaml (optional, empty = built-in defaults)
	PolicyReloadInterval time.Duration // interval to re-read the policy file (default: 5m)

	ConnectTimeout    time.Duration // SSH connection timeout (default: 5s)
	CommandTimeout    time.Duration // per-command execution timeout (default: 10s)
	KeepaliveInterval time.Duration // interval between session keepalive probes (0 = disabled)

	BootstrapAdmin string // identity ensured in the admin roster at startup (optional)
	APIToken       string // static bearer token for the HTTP API (optional, empty = no token check)

	// Redis (audit trail). Empty RedisAddr disables the redis trail,
	// audit events then go to the structured log only.
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	AuditMaxEvents        int           // capped length of the redis audit list

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	RateBurst    int      // rate limit bucket size per requester
	RatePerMin   int      // rate limit refill per requester per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELLGATE_LISTEN_PORT", ":8222"),
		ShutdownTimeout: mustDuration("SHELLGATE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SHELLGATE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELLGATE_PRETTY_LOG", true),

		// Stores and policy
		DataDir:              getenv("SHELLGATE_DATA_DIR", "data"),
		PolicyFile:           getenv("SHELLGATE_POLICY_FILE", ""), // Optional, empty = built-in policy
		PolicyReloadInterval: mustDuration("SHELLGATE_POLICY_RELOAD_INTERVAL", 5*time.Minute),

		// SSH behavior
		ConnectTimeout:    mustDuration("SHELLGATE_CONNECT_TIMEOUT", 5*time.Second),
		CommandTimeout:    mustDuration("SHELLGATE_COMMAND_TIMEOUT", 10*time.Second),
		KeepaliveInterval: mustDuration("SHELLGATE_KEEPALIVE_INTERVAL", 30*time.Second),

		// Access
		BootstrapAdmin: getenv("SHELLGATE_BOOTSTRAP_ADMIN", ""),
		APIToken:       getenv("SHELLGATE_API_TOKEN", ""),

		// Redis settings (audit trail, optional)
		RedisAddr:             getenv("SHELLGATE_REDIS_ADDR", ""),
		RedisUser:             getenv("SHELLGATE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHELLGATE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("SHELLGATE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SHELLGATE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		AuditMaxEvents:        getenvInt("SHELLGATE_AUDIT_MAX_EVENTS", 1000),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SHELLGATE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SHELLGATE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SHELLGATE_TRUST_PROXY", false),
		RateBurst:    getenvInt("SHELLGATE_RATE_BURST", 10),
		RatePerMin:   getenvInt("SHELLGATE_RATE_PER_MIN", 60),
	}

	// Validate Redis password configuration (only when the audit trail is enabled)
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SHELLGATE_REDIS_PASSWORD is required when SHELLGATE_REDIS_PASSWORD_REQUIRED=true")
	}

	// Timeouts bound every SSH operation, a non-positive value would mean no bound at all.
	if cfg.ConnectTimeout <= 0 {
		panic(fmt.Sprintf("❌ FATAL: SHELLGATE_CONNECT_TIMEOUT must be > 0, got %v", cfg.ConnectTimeout))
	}
	if cfg.CommandTimeout <= 0 {
		panic(fmt.Sprintf("❌ FATAL: SHELLGATE_COMMAND_TIMEOUT must be > 0, got %v", cfg.CommandTimeout))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.APIToken != "" {
			cfgCopy.APIToken = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
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

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
