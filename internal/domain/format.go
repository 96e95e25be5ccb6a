package domain

import (
	"fmt"
	"strings"
)

// FormatServerList renders the inventory as a numbered text block. Login
// credentials are never rendered, only address, provenance and date.
func FormatServerList(servers []Server) string {
	if len(servers) == 0 {
		return "No servers found."
	}

	var b strings.Builder
	b.WriteString("All Servers:\n\n")
	for idx, srv := range servers {
		fmt.Fprintf(&b, "Server Number: %d\n", idx+1)
		fmt.Fprintf(&b, "Server IP: %s\n", srv.Address)
		fmt.Fprintf(&b, "Added By: %s\n", srv.AddedBy)
		fmt.Fprintf(&b, "Date Added: %s\n", srv.AddedAt)
		b.WriteString(strings.Repeat("-", 20))
		b.WriteString("\n\n")
	}
	return b.String()
}
