package guard

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy is the active command rule set.
//
// Blocked entries are matched as case-insensitive substrings anywhere in a
// command. AllowedPrefixes, when non-empty, restricts the first token of a
// command to the listed prefixes, an empty list disables that gate.
type Policy struct {
	Blocked         []string `yaml:"blocked"`
	AllowedPrefixes []string `yaml:"allowed_prefixes"`
}

// DefaultPolicy returns the built-in rule set used when no policy file is
// configured. The prefix gate is off by default.
func DefaultPolicy() Policy {
	return Policy{
		Blocked: []string{"rm -rf /", "mkfs", "dd if=", "format", "fdisk"},
	}
}

// LoadFile reads and parses a policy yaml file.
//
// A file with an empty or missing blocked list keeps the built-in blocklist,
// dropping every blocked pattern at once is almost certainly a mistake.
func LoadFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy yaml: %w", err)
	}

	p.Blocked = cleanList(p.Blocked)
	p.AllowedPrefixes = cleanList(p.AllowedPrefixes)

	if len(p.Blocked) == 0 {
		p.Blocked = DefaultPolicy().Blocked
	}

	return p, nil
}

// cleanList trims entries and drops empties.
func cleanList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SourceBuiltin marks a policy that did not come from a file.
const SourceBuiltin = "builtin"

// Holder publishes the active policy to concurrent readers and lets the
// reloader swap it atomically. Readers must treat the returned Policy as
// read-only.
type Holder struct {
	mu       sync.RWMutex
	policy   Policy
	source   string
	loadedAt time.Time
}

func NewHolder(p Policy, source string) *Holder {
	return &Holder{
		policy:   p,
		source:   source,
		loadedAt: time.Now(),
	}
}

// Current returns the active policy.
func (h *Holder) Current() Policy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policy
}

// Replace swaps the active policy.
func (h *Holder) Replace(p Policy, source string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.policy = p
	h.source = source
	h.loadedAt = time.Now()
}

// Provenance reports where the active policy came from and when it was
// loaded.
func (h *Holder) Provenance() (source string, loadedAt time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.source, h.loadedAt
}
