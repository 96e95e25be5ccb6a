package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shellgate/shellgate/internal/domain"
)

// Fixed dangerous command shapes, checked after the blocklist regardless of
// policy. Matched case-insensitively against the whole command line.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*rm\s+-rf`),
	regexp.MustCompile(`(?i)&&\s*rm\s+-rf`),
	regexp.MustCompile(`(?i)\|\s*rm\s+-rf`),
	regexp.MustCompile(`(?i)>\s*/dev/`),
	regexp.MustCompile(`(?i)<\s*/dev/`),
}

// Validate checks a command against the active policy. Rules run in a fixed
// order and the first failing rule wins: blocklist substrings, then the
// dangerous shapes, then the optional allowed-prefix gate on the first
// token. The dangerous-shape reason is deliberately generic so the matched
// expression is never disclosed to the requester.
//
// This is string-level screening of well-known footguns, not a sandbox. A
// determined operator can still express destructive commands that pass.
func Validate(command string, p Policy) error {
	command = strings.TrimSpace(command)

	lowered := strings.ToLower(command)
	for _, blocked := range p.Blocked {
		if blocked == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(blocked)) {
			return &domain.PolicyError{
				Subject: domain.SubjectCommand,
				Reason:  fmt.Sprintf("command contains blocked pattern: %s", blocked),
			}
		}
	}

	for _, re := range dangerousPatterns {
		if re.MatchString(command) {
			return &domain.PolicyError{
				Subject: domain.SubjectCommand,
				Reason:  "command contains dangerous pattern",
			}
		}
	}

	// An empty command has no first token and passes, there is nothing to
	// gate on.
	if len(p.AllowedPrefixes) > 0 {
		if parts := strings.Fields(command); len(parts) > 0 {
			first := strings.ToLower(parts[0])
			ok := false
			for _, prefix := range p.AllowedPrefixes {
				if strings.HasPrefix(first, strings.ToLower(prefix)) {
					ok = true
					break
				}
			}
			if !ok {
				return &domain.PolicyError{
					Subject: domain.SubjectCommand,
					Reason:  fmt.Sprintf("command must start with one of: %s", strings.Join(p.AllowedPrefixes, ", ")),
				}
			}
		}
	}

	return nil
}
