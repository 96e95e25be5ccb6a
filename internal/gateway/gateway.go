package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/guard"
	"github.com/shellgate/shellgate/internal/logger"
)

// Inventory is the durable server store.
type Inventory interface {
	List() ([]domain.Server, error)
	Append(srv domain.Server) error
	Delete(position int) (domain.Server, bool, error)
}

// Roster is the authorized operator set. IsAdmin is the only call the
// request path depends on, the rest is management surface.
type Roster interface {
	IsAdmin(identity string) bool
	List() ([]string, error)
	Add(identity string) error
	Remove(identity string) (bool, error)
}

// CommandBook is the saved-command store.
type CommandBook interface {
	List() ([]string, error)
	Add(command string) error
	Remove(position int) (string, bool, error)
}

// LoginChecker probes credentials before they enter the inventory.
type LoginChecker interface {
	CheckLogin(ctx context.Context, address, username, password string, timeout time.Duration) bool
}

// Connection is the single-slot remote session.
type Connection interface {
	Connect(ctx context.Context, srv domain.Server, timeout time.Duration) error
	Disconnect() bool
	Execute(command string, timeout time.Duration) (domain.CommandResult, error)
	Status() domain.SessionStatus
	Connected() bool
}

// Options wires a Gateway.
type Options struct {
	Log     logger.Logger
	Servers Inventory
	Admins  Roster
	Book    CommandBook
	Checker LoginChecker
	Session Connection
	Policy  *guard.Holder
	Audit   audit.Recorder

	ConnectTimeout time.Duration
	CommandTimeout time.Duration
}

// Gateway is the boundary every transport talks to. Each operation gates
// on the requester's roster membership before touching anything, so a
// transport bug can never skip the access check.
type Gateway struct {
	log     logger.Logger
	servers Inventory
	admins  Roster
	book    CommandBook
	checker LoginChecker
	session Connection
	policy  *guard.Holder
	audit   audit.Recorder

	connectTimeout time.Duration
	commandTimeout time.Duration
}

func New(opts Options) *Gateway {
	return &Gateway{
		log:            opts.Log,
		servers:        opts.Servers,
		admins:         opts.Admins,
		book:           opts.Book,
		checker:        opts.Checker,
		session:        opts.Session,
		policy:         opts.Policy,
		audit:          opts.Audit,
		connectTimeout: opts.ConnectTimeout,
		commandTimeout: opts.CommandTimeout,
	}
}

func (g *Gateway) authorize(requester string) error {
	if g.admins.IsAdmin(requester) {
		return nil
	}
	g.log.Warn("unauthorized request rejected", logger.String("requester", requester))
	return &domain.PolicyError{Subject: domain.SubjectRequester, Reason: "not authorized"}
}

// Authorize reports whether requester may operate the gateway, without
// performing any operation. Callers that read adjacent state (audit trail,
// component status) gate on it before touching anything.
func (g *Gateway) Authorize(requester string) error {
	return g.authorize(requester)
}

// ListServers returns the inventory in file order.
func (g *Gateway) ListServers(requester string) ([]domain.Server, error) {
	if err := g.authorize(requester); err != nil {
		return nil, err
	}
	return g.servers.List()
}

// SearchServers returns inventory entries ranked against the query,
// best match first. An empty query ranks nothing.
func (g *Gateway) SearchServers(requester, query string) ([]domain.Match, error) {
	if err := g.authorize(requester); err != nil {
		return nil, err
	}
	servers, err := g.servers.List()
	if err != nil {
		return nil, err
	}
	return domain.RankServers(query, servers), nil
}

// AddServer validates the address shape, probes the credentials with a
// throwaway connection and appends the record. The timestamp is taken from
// the caller when given, so imports keep their original dates, and stamped
// with the current UTC time otherwise.
func (g *Gateway) AddServer(ctx context.Context, requester, address, username, password, timestamp string) error {
	if err := g.authorize(requester); err != nil {
		return err
	}

	address = strings.TrimSpace(address)
	if !domain.ValidAddress(address) {
		return &domain.ValidationError{Field: "address", Reason: "must be a literal IPv4 or IPv6 address"}
	}
	if strings.TrimSpace(username) == "" {
		return &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if password == "" {
		return &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	if !g.checker.CheckLogin(ctx, address, username, password, g.connectTimeout) {
		g.record(ctx, requester, audit.ActionServerAdd, address, false, "login check failed")
		return &domain.AuthError{Address: address, Err: errors.New("login check failed")}
	}

	if timestamp == "" {
		timestamp = domain.Timestamp(time.Now())
	}
	srv := domain.Server{
		Address:  address,
		Username: username,
		Password: password,
		AddedBy:  requester,
		AddedAt:  timestamp,
	}
	if err := g.servers.Append(srv); err != nil {
		g.record(ctx, requester, audit.ActionServerAdd, address, false, err.Error())
		return err
	}

	g.log.Info("server added to inventory",
		logger.String("address", address),
		logger.String("requester", requester))
	g.record(ctx, requester, audit.ActionServerAdd, address, true, "")
	return nil
}

// DeleteServer removes the record at the 1-based position. It returns
// false for a position outside the inventory, with nothing changed.
func (g *Gateway) DeleteServer(ctx context.Context, requester string, position int) (bool, error) {
	if err := g.authorize(requester); err != nil {
		return false, err
	}

	removed, ok, err := g.servers.Delete(position)
	if err != nil {
		g.record(ctx, requester, audit.ActionServerDelete, fmt.Sprintf("position %d", position), false, err.Error())
		return false, err
	}
	if !ok {
		return false, nil
	}

	g.log.Info("server deleted from inventory",
		logger.String("address", removed.Address),
		logger.Int("position", position),
		logger.String("requester", requester))
	g.record(ctx, requester, audit.ActionServerDelete, removed.Address, true, "")
	return true, nil
}

// Connect opens the single session slot against explicit credentials.
func (g *Gateway) Connect(ctx context.Context, requester, address, username, password string) error {
	if err := g.authorize(requester); err != nil {
		return err
	}

	address = strings.TrimSpace(address)
	if !domain.ValidAddress(address) {
		return &domain.ValidationError{Field: "address", Reason: "must be a literal IPv4 or IPv6 address"}
	}

	srv := domain.Server{Address: address, Username: username, Password: password}
	return g.connect(ctx, requester, srv)
}

// ConnectPosition resolves a 1-based inventory position and opens the
// session slot with the stored credentials.
func (g *Gateway) ConnectPosition(ctx context.Context, requester string, position int) error {
	if err := g.authorize(requester); err != nil {
		return err
	}

	servers, err := g.servers.List()
	if err != nil {
		return err
	}
	if position < 1 || position > len(servers) {
		return &domain.ValidationError{
			Field:  "position",
			Reason: fmt.Sprintf("must be between 1 and %d", len(servers)),
		}
	}
	return g.connect(ctx, requester, servers[position-1])
}

func (g *Gateway) connect(ctx context.Context, requester string, srv domain.Server) error {
	if err := g.session.Connect(ctx, srv, g.connectTimeout); err != nil {
		if !errors.Is(err, domain.ErrAlreadyConnected) {
			g.record(ctx, requester, audit.ActionConnect, srv.Address, false, err.Error())
		}
		return err
	}
	g.record(ctx, requester, audit.ActionConnect, srv.Address, true, "")
	return nil
}

// Disconnect releases the session slot. False means it was already idle.
func (g *Gateway) Disconnect(ctx context.Context, requester string) (bool, error) {
	if err := g.authorize(requester); err != nil {
		return false, err
	}

	status := g.session.Status()
	ok := g.session.Disconnect()
	if ok {
		g.record(ctx, requester, audit.ActionDisconnect, status.Address, true, "")
	}
	return ok, nil
}

// Status reports the session slot.
func (g *Gateway) Status(requester string) (domain.SessionStatus, error) {
	if err := g.authorize(requester); err != nil {
		return domain.SessionStatus{}, err
	}
	return g.session.Status(), nil
}

// RunCommand pushes one command through the full chain: session gate,
// sanitize, policy filter, execute. The raw text never reaches the remote
// machine, only its sanitized form does. A zero timeout means the
// configured default.
func (g *Gateway) RunCommand(ctx context.Context, requester, command string, timeout time.Duration) (domain.CommandResult, error) {
	if err := g.authorize(requester); err != nil {
		return domain.CommandResult{}, err
	}

	if !g.session.Connected() {
		return domain.CommandResult{}, domain.ErrNotConnected
	}

	sanitized := guard.Sanitize(command)
	if sanitized == "" {
		return domain.CommandResult{}, &domain.ValidationError{Field: "command", Reason: "must not be empty"}
	}

	if err := guard.Validate(sanitized, g.policy.Current()); err != nil {
		g.record(ctx, requester, audit.ActionRun, sanitized, false, err.Error())
		return domain.CommandResult{}, err
	}

	if timeout <= 0 {
		timeout = g.commandTimeout
	}

	result, err := g.session.Execute(sanitized, timeout)
	if err != nil {
		g.record(ctx, requester, audit.ActionRun, sanitized, false, err.Error())
		return domain.CommandResult{}, err
	}

	g.record(ctx, requester, audit.ActionRun, sanitized, true, "")
	return result, nil
}

// ListCommands returns the saved-command book in file order.
func (g *Gateway) ListCommands(requester string) ([]string, error) {
	if err := g.authorize(requester); err != nil {
		return nil, err
	}
	return g.book.List()
}

// AddCommand saves a command in the book. The text goes through the same
// sanitize and filter chain as an executed command, the book can never
// hold a command the policy would refuse to run.
func (g *Gateway) AddCommand(ctx context.Context, requester, command string) error {
	if err := g.authorize(requester); err != nil {
		return err
	}

	sanitized := guard.Sanitize(command)
	if sanitized == "" {
		return &domain.ValidationError{Field: "command", Reason: "must not be empty"}
	}
	if err := guard.Validate(sanitized, g.policy.Current()); err != nil {
		g.record(ctx, requester, audit.ActionCommandAdd, sanitized, false, err.Error())
		return err
	}

	if err := g.book.Add(sanitized); err != nil {
		g.record(ctx, requester, audit.ActionCommandAdd, sanitized, false, err.Error())
		return err
	}
	g.record(ctx, requester, audit.ActionCommandAdd, sanitized, true, "")
	return nil
}

// RemoveCommand deletes the book entry at the 1-based position.
func (g *Gateway) RemoveCommand(ctx context.Context, requester string, position int) (bool, error) {
	if err := g.authorize(requester); err != nil {
		return false, err
	}

	removed, ok, err := g.book.Remove(position)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	g.record(ctx, requester, audit.ActionCommandRemove, removed, true, "")
	return true, nil
}

// ListAdmins returns the roster.
func (g *Gateway) ListAdmins(requester string) ([]string, error) {
	if err := g.authorize(requester); err != nil {
		return nil, err
	}
	return g.admins.List()
}

// AddAdmin puts an identity on the roster. Adding an existing admin
// succeeds quietly.
func (g *Gateway) AddAdmin(ctx context.Context, requester, identity string) error {
	if err := g.authorize(requester); err != nil {
		return err
	}

	if err := g.admins.Add(identity); err != nil {
		return err
	}
	g.log.Info("admin added to roster",
		logger.String("identity", identity),
		logger.String("requester", requester))
	g.record(ctx, requester, audit.ActionAdminAdd, identity, true, "")
	return nil
}

// RemoveAdmin takes an identity off the roster. False means it was not on
// it. Nothing stops an admin removing themselves, the roster file can
// always be edited by hand to recover.
func (g *Gateway) RemoveAdmin(ctx context.Context, requester, identity string) (bool, error) {
	if err := g.authorize(requester); err != nil {
		return false, err
	}

	ok, err := g.admins.Remove(identity)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	g.log.Info("admin removed from roster",
		logger.String("identity", identity),
		logger.String("requester", requester))
	g.record(ctx, requester, audit.ActionAdminRemove, identity, true, "")
	return true, nil
}

func (g *Gateway) record(ctx context.Context, requester, action, target string, ok bool, detail string) {
	g.audit.Record(ctx, audit.Event{
		Requester: requester,
		Action:    action,
		Target:    target,
		OK:        ok,
		Detail:    detail,
	})
}
