package domain

import (
	"testing"
)

func TestRankServers(t *testing.T) {
	servers := []Server{
		{Address: "10.0.0.5", Username: "root", AddedBy: "alice", AddedAt: "2026-01-02 10:00:00"},
		{Address: "10.0.1.7", Username: "deploy", AddedBy: "bob", AddedAt: "2026-01-03 11:00:00"},
		{Address: "192.168.1.20", Username: "alice", AddedBy: "carol", AddedAt: "2026-01-04 12:00:00"},
	}

	tests := []struct {
		name         string
		query        string
		wantTop      int // expected 1-based position of the best match
		wantMatches  int
		wantNoResult bool
	}{
		{
			name:        "exact address",
			query:       "10.0.0.5",
			wantTop:     1,
			wantMatches: 3, // the other rows still match loosely on digits
		},
		{
			name:        "username match",
			query:       "deploy",
			wantTop:     2,
			wantMatches: 1,
		},
		{
			name:    "added by match",
			query:   "carol",
			wantTop: 3,
		},
		{
			name:    "metadata tie keeps file order",
			query:   "alice",
			wantTop: 1, // alice added row 1, alice is the login of row 3, equal scores keep inventory order
		},
		{
			name:         "no match",
			query:        "zzzz",
			wantNoResult: true,
		},
		{
			name:         "empty query",
			query:        "   ",
			wantNoResult: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := RankServers(tt.query, servers)

			if tt.wantNoResult {
				if len(matches) != 0 {
					t.Fatalf("RankServers(%q) returned %d matches, want none", tt.query, len(matches))
				}
				return
			}

			if len(matches) == 0 {
				t.Fatalf("RankServers(%q) returned no matches", tt.query)
			}
			if tt.wantMatches > 0 && len(matches) != tt.wantMatches {
				t.Errorf("RankServers(%q) returned %d matches, want %d", tt.query, len(matches), tt.wantMatches)
			}
			if matches[0].Position != tt.wantTop {
				for i, m := range matches {
					t.Logf("  %d. position=%d address=%s score=%.1f", i+1, m.Position, m.Server.Address, m.Score)
				}
				t.Errorf("top match position = %d, want %d", matches[0].Position, tt.wantTop)
			}
		})
	}
}

func TestRankServersOrderStable(t *testing.T) {
	servers := []Server{
		{Address: "10.0.0.1", Username: "root", AddedBy: "ops"},
		{Address: "10.0.0.2", Username: "root", AddedBy: "ops"},
		{Address: "10.0.0.3", Username: "root", AddedBy: "ops"},
	}

	matches := RankServers("root", servers)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i, m := range matches {
		if m.Position != i+1 {
			t.Errorf("match %d has position %d, want %d (ties keep inventory order)", i, m.Position, i+1)
		}
	}
}

func TestNormalizeFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.0.0.1", "10001"},
		{"Alice", "alice"},
		{"de-ploy_7", "deploy7"},
		{"...", ""},
	}

	for _, tt := range tests {
		if got := normalizeFragment(tt.in); got != tt.want {
			t.Errorf("normalizeFragment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
