package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shellgate/shellgate/internal/domain"
)

func tempServerStore(t *testing.T) (*ServerStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.txt")
	return NewServerStore(path), path
}

func TestServerStoreListMissingFile(t *testing.T) {
	store, _ := tempServerStore(t)

	servers, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(servers) != 0 {
		t.Errorf("List() on missing file = %v servers, want 0", len(servers))
	}
}

func TestServerStoreAppendCreatesHeader(t *testing.T) {
	store, path := tempServerStore(t)

	srv := domain.Server{
		Address:  "192.168.1.10",
		Username: "deploy",
		Password: "secret",
		AddedBy:  "alice",
		AddedAt:  "2025-06-01 12:00:00",
	}
	if err := store.Append(srv); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("file has %v lines, want 2 (header + record)", len(lines))
	}
	if lines[0] != "SERVER_IP,LOGIN_USERNAME,LOGIN_PASSWORD,ADDED_BY,DATE_ADDED" {
		t.Errorf("header = %q, want the fixed schema", lines[0])
	}
	if lines[1] != "192.168.1.10,deploy,secret,alice,2025-06-01 12:00:00" {
		t.Errorf("record = %q", lines[1])
	}
}

func TestServerStoreAppendListRoundTrip(t *testing.T) {
	store, _ := tempServerStore(t)

	want := []domain.Server{
		{Address: "192.168.1.10", Username: "deploy", Password: "secret", AddedBy: "alice", AddedAt: "2025-06-01 12:00:00"},
		{Address: "10.0.0.5", Username: "root", Password: "pass,with,commas", AddedBy: "bob", AddedAt: "2025-06-02 08:30:00"},
		{Address: "192.168.1.10", Username: "deploy", Password: "secret", AddedBy: "alice", AddedAt: "2025-06-03 09:00:00"},
	}
	for _, srv := range want {
		if err := store.Append(srv); err != nil {
			t.Fatalf("Append(%v) error = %v", srv.Address, err)
		}
	}

	got, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("List() = %v servers, want %v", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("server %v = %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestServerStoreTolerantRead(t *testing.T) {
	store, path := tempServerStore(t)

	content := strings.Join([]string{
		"SERVER_IP,LOGIN_USERNAME,LOGIN_PASSWORD,ADDED_BY,DATE_ADDED",
		"192.168.1.10,deploy,secret,alice,2025-06-01 12:00:00",
		"10.0.0.5,root",
		"172.16.0.1,admin,hunter2",
		"",
		"10.0.0.9,svc,pw,carol",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("seeding store file: %v", err)
	}

	got, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []domain.Server{
		{Address: "192.168.1.10", Username: "deploy", Password: "secret", AddedBy: "alice", AddedAt: "2025-06-01 12:00:00"},
		{Address: "172.16.0.1", Username: "admin", Password: "hunter2"},
		{Address: "10.0.0.9", Username: "svc", Password: "pw", AddedBy: "carol"},
	}
	if len(got) != len(want) {
		t.Fatalf("List() = %v servers, want %v (short and blank rows dropped)", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("server %v = %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestServerStoreDelete(t *testing.T) {
	store, _ := tempServerStore(t)

	addresses := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	for _, addr := range addresses {
		srv := domain.Server{Address: addr, Username: "root", Password: "pw", AddedBy: "alice", AddedAt: "2025-06-01 12:00:00"}
		if err := store.Append(srv); err != nil {
			t.Fatalf("Append(%v) error = %v", addr, err)
		}
	}

	removed, ok, err := store.Delete(2)
	if err != nil {
		t.Fatalf("Delete(2) error = %v", err)
	}
	if !ok {
		t.Fatal("Delete(2) = false, want true")
	}
	if removed.Address != "10.0.0.2" {
		t.Errorf("Delete(2) removed %q, want %q", removed.Address, "10.0.0.2")
	}

	got, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() after delete = %v servers, want 2", len(got))
	}
	if got[0].Address != "10.0.0.1" || got[1].Address != "10.0.0.3" {
		t.Errorf("remaining order = %v, %v, want 10.0.0.1, 10.0.0.3", got[0].Address, got[1].Address)
	}
}

func TestServerStoreDeleteOutOfRange(t *testing.T) {
	store, path := tempServerStore(t)

	srv := domain.Server{Address: "10.0.0.1", Username: "root", Password: "pw", AddedBy: "alice", AddedAt: "2025-06-01 12:00:00"}
	if err := store.Append(srv); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}

	for _, position := range []int{0, -1, 2, 100} {
		_, ok, err := store.Delete(position)
		if err != nil {
			t.Errorf("Delete(%v) error = %v, want nil", position, err)
		}
		if ok {
			t.Errorf("Delete(%v) = true, want false", position)
		}
	}

	// A refused delete must leave the file byte for byte as it was.
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("file changed after out-of-range deletes:\nbefore: %q\nafter:  %q", before, after)
	}
}

func TestServerStoreDeleteEmptyStore(t *testing.T) {
	store, _ := tempServerStore(t)

	_, ok, err := store.Delete(1)
	if err != nil {
		t.Fatalf("Delete(1) error = %v, want nil", err)
	}
	if ok {
		t.Error("Delete(1) on missing file = true, want false")
	}
}

func TestServerStoreDeleteKeepsHeader(t *testing.T) {
	store, path := tempServerStore(t)

	srv := domain.Server{Address: "10.0.0.1", Username: "root", Password: "pw", AddedBy: "alice", AddedAt: "2025-06-01 12:00:00"}
	if err := store.Append(srv); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, ok, err := store.Delete(1); err != nil || !ok {
		t.Fatalf("Delete(1) = %v, %v", ok, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}
	if got := strings.TrimRight(string(data), "\n"); got != "SERVER_IP,LOGIN_USERNAME,LOGIN_PASSWORD,ADDED_BY,DATE_ADDED" {
		t.Errorf("emptied store = %q, want header only", got)
	}

	// The emptied store must still accept new records without a second header.
	if err := store.Append(srv); err != nil {
		t.Fatalf("Append() after empty error = %v", err)
	}
	servers, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(servers) != 1 {
		t.Errorf("List() = %v servers, want 1", len(servers))
	}
}
