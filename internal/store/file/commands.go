package file

import (
	"os"
	"strings"
	"sync"

	"github.com/shellgate/shellgate/internal/domain"
)

// CommandStore persists the saved-command book, one command per line.
// Blank lines are skipped on read, positions are 1-based like the
// inventory.
type CommandStore struct {
	mu   sync.Mutex
	path string
}

func NewCommandStore(path string) *CommandStore {
	return &CommandStore{path: path}
}

// List returns the book in file order. A missing file reads as empty.
func (s *CommandStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Add appends one command to the book.
func (s *CommandStore) Add(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return &domain.StoreError{Op: "append", Path: s.path, Err: err}
	}
	_, werr := f.WriteString(command + "\n")
	cerr := f.Close()
	if werr != nil {
		return &domain.StoreError{Op: "append", Path: s.path, Err: werr}
	}
	if cerr != nil {
		return &domain.StoreError{Op: "append", Path: s.path, Err: cerr}
	}
	return nil
}

// Remove deletes the command at the given 1-based position and rewrites
// the book. A position outside [1, count] returns false with the file
// untouched.
func (s *CommandStore) Remove(position int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commands, err := s.readLocked()
	if err != nil {
		return "", false, err
	}
	if position < 1 || position > len(commands) {
		return "", false, nil
	}

	removed := commands[position-1]
	remaining := make([]string, 0, len(commands)-1)
	remaining = append(remaining, commands[:position-1]...)
	remaining = append(remaining, commands[position:]...)

	var sb strings.Builder
	for _, command := range remaining {
		sb.WriteString(command)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(s.path, []byte(sb.String()), 0o600); err != nil {
		return "", false, &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	return removed, true, nil
}

func (s *CommandStore) readLocked() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "read", Path: s.path, Err: err}
	}

	lines := strings.Split(string(data), "\n")
	commands := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			commands = append(commands, line)
		}
	}
	return commands, nil
}
