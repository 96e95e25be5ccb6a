package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/gateway"
	"github.com/shellgate/shellgate/internal/guard"
	"github.com/shellgate/shellgate/internal/logger"
)

// AuditTrail is the queryable side of the audit store. Only the
// redis-backed trail implements it, log-only auditing has nothing to
// query.
type AuditTrail interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Gateway *gateway.Gateway
	Policy  *guard.Holder

	Audit       audit.Recorder // event recorder shared with the gateway
	AuditTrail  AuditTrail     // nil when redis auditing is off
	RedisClient *redis.Client  // nil when redis auditing is off

	APIToken      string        // static bearer token for /api, empty disables the check
	AllowedHosts  []string      // Host headers allowed to access the server
	AllowedCIDRS  []string      // IPs allowed to reach the API and probe endpoints
	TrustProxy    bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	ReloadTrigger chan struct{} // Channel to trigger manual policy reload (nil if no policy file)
	RateBurst     int           // Rate limit burst per requester
	RatePerMin    int           // Rate limit refill per requester per minute
}
