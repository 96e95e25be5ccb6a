package domain

import (
	"net"
	"time"
)

// ServersHeader is the first line of the inventory file. It is written when
// the file is created and skipped on every read. The column names are kept
// verbatim so existing inventory files stay readable.
var ServersHeader = []string{"SERVER_IP", "LOGIN_USERNAME", "LOGIN_PASSWORD", "ADDED_BY", "DATE_ADDED"}

// TimestampLayout is the wall-clock format used wherever a record or event
// carries a human-readable time. Always rendered in UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp renders t in the canonical layout (UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Server is one row of the inventory.
//
// A server has no identity beyond its 1-based position in the file, the
// inventory never deduplicates and never mutates a row in place. AddedAt is
// kept as the raw stored string so a record round-trips byte-for-byte
// through add and list.
type Server struct {
	Address  string `json:"address"`
	Username string `json:"username"`
	Password string `json:"-"` // never serialized, the file store is the only writer
	AddedBy  string `json:"added_by"`
	AddedAt  string `json:"added_at"`
}

// ValidAddress reports whether s is a syntactically plausible server address.
// Only literal IP addresses (v4 or v6) are accepted, the check never touches
// the network.
func ValidAddress(s string) bool {
	return net.ParseIP(s) != nil
}
