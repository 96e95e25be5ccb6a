package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Scoring weights for inventory search, tuned for short fields.
const (
	scoreExact     = 100.0
	scorePrefix    = 75.0
	scoreSubstring = 50.0
	scoreFuzzy     = 25.0

	// Matches on the address outrank matches on metadata fields.
	scoreAddressBonus = 20.0
)

// Match pairs an inventory row with its score against a query.
// Position is the 1-based position of the row, usable directly with
// delete and connect.
type Match struct {
	Position int     `json:"position"`
	Server   Server  `json:"server"`
	Score    float64 `json:"score"`
}

// RankServers scores every inventory row against a free-form query and
// returns matches ordered best-first. Rows with no match are dropped.
// Fragments are space-separated and unordered, each fragment is scored
// against the address, username and added-by fields and the best field
// score wins.
func RankServers(query string, servers []Server) []Match {
	fragments := queryFragments(query)
	if len(fragments) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(servers))
	for i, srv := range servers {
		score := scoreServer(fragments, srv)
		if score == 0.0 {
			continue
		}
		matches = append(matches, Match{
			Position: i + 1,
			Server:   srv,
			Score:    score,
		})
	}

	// Best first, ties keep inventory order.
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	return matches
}

// scoreServer sums the best field score of each query fragment.
func scoreServer(fragments []string, srv Server) float64 {
	address := normalizeFragment(srv.Address)
	username := normalizeFragment(srv.Username)
	addedBy := normalizeFragment(srv.AddedBy)

	var total float64
	for _, frag := range fragments {
		best := scoreFragment(frag, address)
		if best > 0 {
			best += scoreAddressBonus
		}
		if s := scoreFragment(frag, username); s > best {
			best = s
		}
		if s := scoreFragment(frag, addedBy); s > best {
			best = s
		}
		total += best
	}
	return total
}

// scoreFragment scores a single query fragment against a normalized field.
func scoreFragment(frag, field string) float64 {
	if frag == "" || field == "" {
		return 0.0
	}

	if frag == field {
		return scoreExact
	}

	if strings.HasPrefix(field, frag) {
		return scorePrefix
	}

	if idx := strings.Index(field, frag); idx >= 0 {
		// Earlier substring matches score slightly higher.
		return scoreSubstring + 10.0*(1.0-float64(idx)/float64(len(field)))
	}

	similarity := calculateSimilarity(frag, field)
	if similarity > 0.5 {
		return scoreFuzzy * similarity
	}

	return 0.0
}

// calculateSimilarity is a cheap character-overlap ratio, good enough for
// typo-tolerant lookups over a handful of rows.
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	for _, c := range s1 {
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(len(s1))
}

// queryFragments splits a raw query into normalized fragments.
func queryFragments(query string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	fragments := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := normalizeFragment(f); n != "" {
			fragments = append(fragments, n)
		}
	}
	return fragments
}

// normalizeFragment lowers and strips everything but letters and digits so
// "10.0.0.1" and "10001" compare equal under substring matching.
func normalizeFragment(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}
