package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	ServersLoaded *int   `json:"servers_loaded,omitempty"`
	Connected     *bool  `json:"connected,omitempty"`
	Address       string `json:"address,omitempty"`
	Source        string `json:"source,omitempty"`
	BlockedRules  *int   `json:"blocked_rules,omitempty"`
	LoadedAt      string `json:"loaded_at,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type statusResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Status reports the health of every moving part behind the gateway:
// inventory store, connection slot, command policy and audit trail.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester := mw.RequesterFrom(r)
		if err := d.Gateway.Authorize(requester); err != nil {
			writeError(w, err)
			return
		}

		components := map[string]componentStatus{
			"inventory": checkInventory(d, requester),
			"session":   checkSession(d, requester),
			"policy":    checkPolicy(d),
			"audit":     checkAudit(d),
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode folds component health into one word. A broken inventory
// is critical, a broken audit trail only degrades, events still reach the
// log.
func determineMode(components map[string]componentStatus) string {
	if inv, exists := components["inventory"]; exists && !inv.OK {
		return "critical"
	}
	if trail, exists := components["audit"]; exists && !trail.OK {
		return "degraded"
	}
	return "operational"
}

func checkInventory(d deps.Deps, requester string) componentStatus {
	servers, err := d.Gateway.ListServers(requester)
	if err != nil {
		return componentStatus{OK: false, Error: "inventory unreadable"}
	}
	count := len(servers)
	return componentStatus{OK: true, ServersLoaded: &count}
}

func checkSession(d deps.Deps, requester string) componentStatus {
	status, err := d.Gateway.Status(requester)
	if err != nil {
		return componentStatus{OK: false, Error: "session state unavailable"}
	}
	connected := status.Connected
	return componentStatus{
		OK:        true,
		Connected: &connected,
		Address:   status.Address,
	}
}

func checkPolicy(d deps.Deps) componentStatus {
	policy := d.Policy.Current()
	source, loadedAt := d.Policy.Provenance()

	blocked := len(policy.Blocked)
	return componentStatus{
		OK:           true,
		Source:       source,
		BlockedRules: &blocked,
		LoadedAt:     loadedAt.UTC().Format(domain.TimestampLayout),
	}
}

func checkAudit(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: true, Impact: "log-only"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Impact: "trail queries unavailable", Error: "redis unreachable"}
	}
	return componentStatus{OK: true, Impact: "redis trail"}
}
