package file

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/utils"
)

// ServerStore persists the inventory as a headered CSV file. The file is
// the single source of truth, every operation re-reads it so out-of-band
// edits are picked up. Records have no identity beyond their 1-based
// position in the file.
type ServerStore struct {
	mu   sync.Mutex
	path string
}

// NewServerStore creates a store backed by the file at path. The file is
// created lazily on first append.
func NewServerStore(path string) *ServerStore {
	return &ServerStore{path: path}
}

// List returns every usable record in file order. The first line is always
// the header and never a record. Rows with fewer than 3 fields are dropped
// silently, rows missing the trailing metadata fields are kept with the
// gaps left empty. A missing file reads as an empty inventory.
func (s *ServerStore) List() ([]domain.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Append adds one record at the end of the file, creating it with the
// header when absent. Duplicates are never detected here.
func (s *ServerStore) Append(srv domain.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	isNew := os.IsNotExist(statErr)

	// Plaintext credentials, the file stays owner-only.
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return &domain.StoreError{Op: "append", Path: s.path, Err: err}
	}
	defer utils.Close(f)

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(domain.ServersHeader); err != nil {
			return &domain.StoreError{Op: "append", Path: s.path, Err: err}
		}
	}
	if err := w.Write(record(srv)); err != nil {
		return &domain.StoreError{Op: "append", Path: s.path, Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &domain.StoreError{Op: "append", Path: s.path, Err: err}
	}
	return nil
}

// Delete removes the record at the given 1-based position and rewrites the
// file through a temp file in the same directory, so readers only ever see
// the old or the new content. A position outside [1, count] returns false
// and leaves the file untouched.
func (s *ServerStore) Delete(position int) (domain.Server, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	servers, err := s.readLocked()
	if err != nil {
		return domain.Server{}, false, err
	}
	if position < 1 || position > len(servers) {
		return domain.Server{}, false, nil
	}

	removed := servers[position-1]
	remaining := make([]domain.Server, 0, len(servers)-1)
	remaining = append(remaining, servers[:position-1]...)
	remaining = append(remaining, servers[position:]...)

	if err := s.rewriteLocked(remaining); err != nil {
		return domain.Server{}, false, err
	}
	return removed, true, nil
}

func (s *ServerStore) readLocked() ([]domain.Server, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "read", Path: s.path, Err: err}
	}
	defer utils.Close(f)

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &domain.StoreError{Op: "read", Path: s.path, Err: err}
	}

	servers := make([]domain.Server, 0, len(records))
	for i, row := range records {
		if i == 0 || len(row) < 3 {
			continue
		}
		servers = append(servers, domain.Server{
			Address:  row[0],
			Username: row[1],
			Password: row[2],
			AddedBy:  column(row, 3),
			AddedAt:  column(row, 4),
		})
	}
	return servers, nil
}

func (s *ServerStore) rewriteLocked(servers []domain.Server) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "servers-*.tmp")
	if err != nil {
		return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()

	replaced := false
	defer func() {
		if !replaced {
			_ = os.Remove(tmpPath)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(domain.ServersHeader); err != nil {
		utils.Close(tmp)
		return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	for _, srv := range servers {
		if err := w.Write(record(srv)); err != nil {
			utils.Close(tmp)
			return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.Close(tmp)
		return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &domain.StoreError{Op: "rewrite", Path: s.path, Err: err}
	}
	replaced = true
	return nil
}

func record(srv domain.Server) []string {
	return []string{srv.Address, srv.Username, srv.Password, srv.AddedBy, srv.AddedAt}
}

func column(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
