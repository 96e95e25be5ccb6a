package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/guard"
	"github.com/shellgate/shellgate/internal/logger"
	"github.com/shellgate/shellgate/internal/remote"
	filestore "github.com/shellgate/shellgate/internal/store/file"
)

type stubConn struct {
	stdout string
	stderr string
	runErr error
	closed bool
}

func (c *stubConn) Run(command string, timeout time.Duration) (string, string, error) {
	return c.stdout, c.stderr, c.runErr
}

func (c *stubConn) Ping() error { return nil }

func (c *stubConn) Close() error {
	c.closed = true
	return nil
}

type stubDialer struct {
	mu      sync.Mutex
	calls   int
	dialErr error
	stdout  string
	stderr  string
	runErr  error
}

func (d *stubDialer) Dial(ctx context.Context, address, username, password string, timeout time.Duration) (remote.Conn, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return &stubConn{stdout: d.stdout, stderr: d.stderr, runErr: d.runErr}, nil
}

func (d *stubDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *memRecorder) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *memRecorder) find(action string) (audit.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.Action == action {
			return event, true
		}
	}
	return audit.Event{}, false
}

func newTestGateway(t *testing.T, dialer remote.Dialer) (*Gateway, *memRecorder) {
	t.Helper()

	paths := filestore.PathsIn(t.TempDir())
	if err := filestore.EnsureFiles(paths); err != nil {
		t.Fatalf("EnsureFiles() error = %v", err)
	}
	admins := filestore.NewAdminStore(paths.Admins)
	if err := admins.Add("alice"); err != nil {
		t.Fatalf("seeding roster: %v", err)
	}

	log := logger.New("error", false)
	recorder := &memRecorder{}

	gw := New(Options{
		Log:            log,
		Servers:        filestore.NewServerStore(paths.Servers),
		Admins:         admins,
		Book:           filestore.NewCommandStore(paths.Commands),
		Checker:        remote.NewChecker(dialer, log),
		Session:        remote.NewSession(dialer, log),
		Policy:         guard.NewHolder(guard.DefaultPolicy(), guard.SourceBuiltin),
		Audit:          recorder,
		ConnectTimeout: time.Second,
		CommandTimeout: time.Second,
	})
	return gw, recorder
}

func TestGatewayRejectsUnknownRequester(t *testing.T) {
	gw, _ := newTestGateway(t, &stubDialer{})
	ctx := context.Background()

	ops := []struct {
		name string
		call func() error
	}{
		{"ListServers", func() error { _, err := gw.ListServers("mallory"); return err }},
		{"AddServer", func() error { return gw.AddServer(ctx, "mallory", "10.0.0.1", "root", "pw", "") }},
		{"DeleteServer", func() error { _, err := gw.DeleteServer(ctx, "mallory", 1); return err }},
		{"Connect", func() error { return gw.Connect(ctx, "mallory", "10.0.0.1", "root", "pw") }},
		{"Disconnect", func() error { _, err := gw.Disconnect(ctx, "mallory"); return err }},
		{"Status", func() error { _, err := gw.Status("mallory"); return err }},
		{"RunCommand", func() error { _, err := gw.RunCommand(ctx, "mallory", "ls", 0); return err }},
		{"ListCommands", func() error { _, err := gw.ListCommands("mallory"); return err }},
		{"AddAdmin", func() error { return gw.AddAdmin(ctx, "mallory", "mallory") }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			err := op.call()
			var pe *domain.PolicyError
			if !errors.As(err, &pe) {
				t.Fatalf("%s error = %v, want *domain.PolicyError", op.name, err)
			}
			if pe.Subject != domain.SubjectRequester {
				t.Errorf("rejection subject = %q, want %q", pe.Subject, domain.SubjectRequester)
			}
		})
	}
}

func TestGatewayAddServer(t *testing.T) {
	dialer := &stubDialer{}
	gw, recorder := newTestGateway(t, dialer)
	ctx := context.Background()

	if err := gw.AddServer(ctx, "alice", "10.0.0.5", "bob", "pw", "2024-01-01 00:00:00"); err != nil {
		t.Fatalf("AddServer() error = %v", err)
	}

	servers, err := gw.ListServers("alice")
	if err != nil {
		t.Fatalf("ListServers() error = %v", err)
	}
	if len(servers) != 1 {
		t.Fatalf("ListServers() = %v servers, want 1", len(servers))
	}
	want := domain.Server{
		Address:  "10.0.0.5",
		Username: "bob",
		Password: "pw",
		AddedBy:  "alice",
		AddedAt:  "2024-01-01 00:00:00",
	}
	if servers[0] != want {
		t.Errorf("stored record = %+v, want %+v", servers[0], want)
	}

	event, found := recorder.find(audit.ActionServerAdd)
	if !found {
		t.Fatal("no audit event for server add")
	}
	if !event.OK || event.Target != "10.0.0.5" || event.Requester != "alice" {
		t.Errorf("audit event = %+v", event)
	}
}

func TestGatewayAddServerStampsTime(t *testing.T) {
	gw, _ := newTestGateway(t, &stubDialer{})

	before := domain.Timestamp(time.Now())
	if err := gw.AddServer(context.Background(), "alice", "10.0.0.5", "bob", "pw", ""); err != nil {
		t.Fatalf("AddServer() error = %v", err)
	}
	after := domain.Timestamp(time.Now())

	servers, _ := gw.ListServers("alice")
	if len(servers) != 1 {
		t.Fatalf("ListServers() = %v servers, want 1", len(servers))
	}
	got := servers[0].AddedAt
	if got < before || got > after {
		t.Errorf("AddedAt = %q, want between %q and %q", got, before, after)
	}
}

func TestGatewayAddServerValidation(t *testing.T) {
	dialer := &stubDialer{}
	gw, _ := newTestGateway(t, dialer)
	ctx := context.Background()

	tests := []struct {
		name      string
		address   string
		username  string
		password  string
		wantField string
	}{
		{"hostname rejected", "server.example.com", "root", "pw", "address"},
		{"garbage rejected", "999.999.999.999", "root", "pw", "address"},
		{"empty address", "", "root", "pw", "address"},
		{"empty username", "10.0.0.1", "  ", "pw", "username"},
		{"empty password", "10.0.0.1", "root", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gw.AddServer(ctx, "alice", tt.address, tt.username, tt.password, "")
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("AddServer() error = %v, want *domain.ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("rejected field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}

	// Validation failures must never reach the network.
	if got := dialer.dialCount(); got != 0 {
		t.Errorf("dial count = %v, want 0", got)
	}
}

func TestGatewayAddServerBadCredentials(t *testing.T) {
	dialer := &stubDialer{dialErr: &domain.AuthError{Address: "10.0.0.5", Err: errors.New("refused")}}
	gw, _ := newTestGateway(t, dialer)

	err := gw.AddServer(context.Background(), "alice", "10.0.0.5", "bob", "wrong", "")
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("AddServer() error = %v, want *domain.AuthError", err)
	}

	servers, _ := gw.ListServers("alice")
	if len(servers) != 0 {
		t.Errorf("inventory holds %v servers after refused login, want 0", len(servers))
	}
}

func TestGatewayDeleteServer(t *testing.T) {
	gw, recorder := newTestGateway(t, &stubDialer{})
	ctx := context.Background()

	if err := gw.AddServer(ctx, "alice", "10.0.0.5", "bob", "pw", "2024-01-01 00:00:00"); err != nil {
		t.Fatalf("AddServer() error = %v", err)
	}

	ok, err := gw.DeleteServer(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("DeleteServer() error = %v", err)
	}
	if !ok {
		t.Fatal("DeleteServer(1) = false, want true")
	}

	servers, _ := gw.ListServers("alice")
	if len(servers) != 0 {
		t.Errorf("ListServers() after delete = %v servers, want 0", len(servers))
	}

	event, found := recorder.find(audit.ActionServerDelete)
	if !found {
		t.Fatal("no audit event for server delete")
	}
	if event.Target != "10.0.0.5" {
		t.Errorf("audit target = %q, want the deleted address", event.Target)
	}

	ok, err = gw.DeleteServer(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("DeleteServer() on empty inventory error = %v", err)
	}
	if ok {
		t.Error("DeleteServer() on empty inventory = true, want false")
	}
}

func TestGatewayConnectPosition(t *testing.T) {
	dialer := &stubDialer{}
	gw, _ := newTestGateway(t, dialer)
	ctx := context.Background()

	if err := gw.AddServer(ctx, "alice", "10.0.0.5", "bob", "pw", ""); err != nil {
		t.Fatalf("AddServer() error = %v", err)
	}

	err := gw.ConnectPosition(ctx, "alice", 7)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("ConnectPosition(7) error = %v, want *domain.ValidationError", err)
	}

	if err := gw.ConnectPosition(ctx, "alice", 1); err != nil {
		t.Fatalf("ConnectPosition(1) error = %v", err)
	}

	status, err := gw.Status("alice")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.Connected || status.Address != "10.0.0.5" || status.Username != "bob" {
		t.Errorf("Status() = %+v, want connected to 10.0.0.5 as bob", status)
	}
}

func TestGatewayConnectTwice(t *testing.T) {
	gw, _ := newTestGateway(t, &stubDialer{})
	ctx := context.Background()

	if err := gw.Connect(ctx, "alice", "10.0.0.5", "bob", "pw"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	err := gw.Connect(ctx, "alice", "10.0.0.6", "bob", "pw")
	if !errors.Is(err, domain.ErrAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want ErrAlreadyConnected", err)
	}

	ok, err := gw.Disconnect(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("Disconnect() = %v, %v", ok, err)
	}
	ok, err = gw.Disconnect(ctx, "alice")
	if err != nil {
		t.Fatalf("second Disconnect() error = %v", err)
	}
	if ok {
		t.Error("second Disconnect() = true, want false")
	}
}

func TestGatewayRunCommand(t *testing.T) {
	dialer := &stubDialer{stdout: "ok\n"}
	gw, recorder := newTestGateway(t, dialer)
	ctx := context.Background()

	_, err := gw.RunCommand(ctx, "alice", "uptime", 0)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("RunCommand() while idle error = %v, want ErrNotConnected", err)
	}

	if err := gw.Connect(ctx, "alice", "10.0.0.5", "bob", "pw"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	result, err := gw.RunCommand(ctx, "alice", "uptime", 0)
	if err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	if result.Stdout != "ok\n" {
		t.Errorf("RunCommand() stdout = %q, want %q", result.Stdout, "ok\n")
	}

	event, found := recorder.find(audit.ActionRun)
	if !found {
		t.Fatal("no audit event for command run")
	}
	if event.Target != "uptime" || !event.OK {
		t.Errorf("audit event = %+v", event)
	}
}

func TestGatewayRunCommandBlocked(t *testing.T) {
	dialer := &stubDialer{stdout: "should never appear"}
	gw, recorder := newTestGateway(t, dialer)
	ctx := context.Background()

	if err := gw.Connect(ctx, "alice", "10.0.0.5", "bob", "pw"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	connectDials := dialer.dialCount()

	_, err := gw.RunCommand(ctx, "alice", "rm -rf / --no-preserve-root", 0)
	var pe *domain.PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("RunCommand() error = %v, want *domain.PolicyError", err)
	}
	if pe.Subject != domain.SubjectCommand {
		t.Errorf("rejection subject = %q, want %q", pe.Subject, domain.SubjectCommand)
	}
	if !strings.Contains(pe.Reason, "rm -rf /") {
		t.Errorf("rejection reason = %q, want it to name the blocked pattern", pe.Reason)
	}

	// The refusal happens before the transport, no extra dial, no run.
	if got := dialer.dialCount(); got != connectDials {
		t.Errorf("dial count = %v, want %v", got, connectDials)
	}

	event, found := recorder.find(audit.ActionRun)
	if !found {
		t.Fatal("blocked command left no audit event")
	}
	if event.OK {
		t.Error("audit event for blocked command has OK = true")
	}
}

func TestGatewayRunCommandSanitizes(t *testing.T) {
	dialer := &stubDialer{stdout: "done"}
	gw, recorder := newTestGateway(t, dialer)
	ctx := context.Background()

	if err := gw.Connect(ctx, "alice", "10.0.0.5", "bob", "pw"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if _, err := gw.RunCommand(ctx, "alice", "  uptime\x00\x1b[31m  ", 0); err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}

	event, found := recorder.find(audit.ActionRun)
	if !found {
		t.Fatal("no audit event for command run")
	}
	if event.Target != "uptime[31m" {
		t.Errorf("audited command = %q, want the sanitized form", event.Target)
	}

	_, err := gw.RunCommand(ctx, "alice", "\x00\x01\x02", 0)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("RunCommand() of pure control characters error = %v, want *domain.ValidationError", err)
	}
}

func TestGatewayCommandBook(t *testing.T) {
	gw, _ := newTestGateway(t, &stubDialer{})
	ctx := context.Background()

	if err := gw.AddCommand(ctx, "alice", "  df -h  "); err != nil {
		t.Fatalf("AddCommand() error = %v", err)
	}

	err := gw.AddCommand(ctx, "alice", "dd if=/dev/zero of=/dev/sda")
	var pe *domain.PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("AddCommand() of blocked command error = %v, want *domain.PolicyError", err)
	}

	commands, err := gw.ListCommands("alice")
	if err != nil {
		t.Fatalf("ListCommands() error = %v", err)
	}
	if len(commands) != 1 || commands[0] != "df -h" {
		t.Errorf("ListCommands() = %v, want [df -h]", commands)
	}

	ok, err := gw.RemoveCommand(ctx, "alice", 1)
	if err != nil || !ok {
		t.Fatalf("RemoveCommand(1) = %v, %v", ok, err)
	}
	ok, err = gw.RemoveCommand(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("RemoveCommand() on empty book error = %v", err)
	}
	if ok {
		t.Error("RemoveCommand() on empty book = true, want false")
	}
}

func TestGatewayRoster(t *testing.T) {
	gw, _ := newTestGateway(t, &stubDialer{})
	ctx := context.Background()

	if err := gw.AddAdmin(ctx, "alice", "bob"); err != nil {
		t.Fatalf("AddAdmin() error = %v", err)
	}

	// The new admin can operate immediately.
	if _, err := gw.ListServers("bob"); err != nil {
		t.Errorf("ListServers() as new admin error = %v", err)
	}

	admins, err := gw.ListAdmins("alice")
	if err != nil {
		t.Fatalf("ListAdmins() error = %v", err)
	}
	if len(admins) != 2 {
		t.Errorf("ListAdmins() = %v, want [alice bob]", admins)
	}

	ok, err := gw.RemoveAdmin(ctx, "alice", "bob")
	if err != nil || !ok {
		t.Fatalf("RemoveAdmin() = %v, %v", ok, err)
	}
	if _, err := gw.ListServers("bob"); err == nil {
		t.Error("removed admin can still operate")
	}

	ok, err = gw.RemoveAdmin(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("second RemoveAdmin() error = %v", err)
	}
	if ok {
		t.Error("RemoveAdmin() of absent identity = true, want false")
	}
}

func TestGatewaySearchServers(t *testing.T) {
	gw, _ := newTestGateway(t, &stubDialer{})
	ctx := context.Background()

	for _, addr := range []string{"10.0.0.5", "192.168.1.20"} {
		if err := gw.AddServer(ctx, "alice", addr, "bob", "pw", ""); err != nil {
			t.Fatalf("AddServer(%v) error = %v", addr, err)
		}
	}

	matches, err := gw.SearchServers("alice", "192.168.1.20")
	if err != nil {
		t.Fatalf("SearchServers() error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("SearchServers() found nothing")
	}
	if matches[0].Server.Address != "192.168.1.20" {
		t.Errorf("best match = %q, want 192.168.1.20", matches[0].Server.Address)
	}
	if matches[0].Position != 2 {
		t.Errorf("best match position = %v, want 2", matches[0].Position)
	}
}
