package remote

import (
	"context"
	"time"

	"github.com/shellgate/shellgate/internal/logger"
	"github.com/shellgate/shellgate/internal/utils"
)

// Checker probes credentials with throwaway connections.
type Checker struct {
	dialer Dialer
	log    logger.Logger
}

func NewChecker(dialer Dialer, log logger.Logger) *Checker {
	return &Checker{
		dialer: dialer,
		log:    log,
	}
}

// CheckLogin reports whether the credentials open an SSH session on the
// target within the timeout. The probe connection is closed immediately and
// never reused. Any failure counts as invalid credentials, the cause is
// logged here and not surfaced to the caller.
func (c *Checker) CheckLogin(ctx context.Context, address, username, password string, timeout time.Duration) bool {
	conn, err := c.dialer.Dial(ctx, address, username, password, timeout)
	if err != nil {
		c.log.Warnf("login validation failed for %s: %v", address, err)
		return false
	}
	utils.Close(conn)
	return true
}
