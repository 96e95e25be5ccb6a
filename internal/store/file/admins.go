package file

import (
	"os"
	"strings"
	"sync"

	"github.com/shellgate/shellgate/internal/domain"
)

// AdminStore persists the authorized operator roster as a single
// comma-separated line. The file is re-read on every check so out-of-band
// edits take effect immediately, no reload step exists.
type AdminStore struct {
	mu   sync.Mutex
	path string
}

func NewAdminStore(path string) *AdminStore {
	return &AdminStore{path: path}
}

// IsAdmin reports whether identity is on the roster. Any failure reading
// the roster denies access, an unreadable roster authorizes nobody.
func (s *AdminStore) IsAdmin(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	admins, err := s.readLocked()
	if err != nil {
		return false
	}
	identity = strings.TrimSpace(identity)
	for _, admin := range admins {
		if admin == identity {
			return true
		}
	}
	return false
}

// List returns the roster in file order.
func (s *AdminStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Add puts identity on the roster. Adding an identity that is already
// present succeeds without touching the file.
func (s *AdminStore) Add(identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return &domain.ValidationError{Field: "identity", Reason: "must not be empty"}
	}
	if strings.Contains(identity, ",") {
		return &domain.ValidationError{Field: "identity", Reason: "must not contain a comma"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	admins, err := s.readLocked()
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if admin == identity {
			return nil
		}
	}
	return s.writeLocked(append(admins, identity))
}

// Remove takes identity off the roster. It returns false when the identity
// was not on it.
func (s *AdminStore) Remove(identity string) (bool, error) {
	identity = strings.TrimSpace(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	admins, err := s.readLocked()
	if err != nil {
		return false, err
	}

	remaining := make([]string, 0, len(admins))
	found := false
	for _, admin := range admins {
		if admin == identity {
			found = true
			continue
		}
		remaining = append(remaining, admin)
	}
	if !found {
		return false, nil
	}
	if err := s.writeLocked(remaining); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AdminStore) readLocked() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "read", Path: s.path, Err: err}
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}

	admins := make([]string, 0, 4)
	for _, part := range strings.Split(content, ",") {
		if part = strings.TrimSpace(part); part != "" {
			admins = append(admins, part)
		}
	}
	return admins, nil
}

func (s *AdminStore) writeLocked(admins []string) error {
	if err := os.WriteFile(s.path, []byte(strings.Join(admins, ",")), 0o600); err != nil {
		return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	return nil
}
