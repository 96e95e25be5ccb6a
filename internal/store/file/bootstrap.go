package file

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shellgate/shellgate/internal/domain"
)

// Paths locates every durable file under the data directory.
type Paths struct {
	Servers  string
	Admins   string
	Commands string
}

func PathsIn(dataDir string) Paths {
	return Paths{
		Servers:  filepath.Join(dataDir, "servers.txt"),
		Admins:   filepath.Join(dataDir, "admins.txt"),
		Commands: filepath.Join(dataDir, "commands.txt"),
	}
}

// EnsureFiles creates the data directory and every durable file that is
// missing. The inventory gets its header, the roster and the command book
// start empty. Existing files are never touched.
func EnsureFiles(p Paths) error {
	if err := os.MkdirAll(filepath.Dir(p.Servers), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if _, err := os.Stat(p.Servers); os.IsNotExist(err) {
		f, err := os.OpenFile(p.Servers, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.Servers, err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(domain.ServersHeader); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing header to %s: %w", p.Servers, err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing header to %s: %w", p.Servers, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("creating %s: %w", p.Servers, err)
		}
	}

	for _, path := range []string{p.Admins, p.Commands} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, nil, 0o600); err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
		}
	}
	return nil
}
