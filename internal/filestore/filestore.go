// Package filestore persists accepted receipt files on disk. Saved files
// are served back under /uploads/, and the returned pair becomes the
// bill's fileUrl/fileName.
package filestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"billed/internal/core"
)

const urlPrefix = "/uploads/"

type Store struct {
	dir string
	seq atomic.Int64
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Store) Dir() string { return s.dir }

// Save writes the attached file and returns its public URL together with
// the original file name. Stored names are uniquified so two receipts named
// alike never clash.
func (s *Store) Save(f core.AttachedFile) (fileURL, fileName string, err error) {
	if !core.AcceptedReceiptFile(f.Name, f.MIMEType) {
		return "", "", fmt.Errorf("refused file type: %s", f.Name)
	}
	if f.Handle == nil {
		return "", "", fmt.Errorf("no file handle for %s", f.Name)
	}

	stored := fmt.Sprintf("%d-%d-%s", time.Now().UnixNano(), s.seq.Add(1), sanitizeName(f.Name))
	path := filepath.Join(s.dir, stored)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f.Handle); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}

	slog.Info("Receipt file stored", "name", f.Name, "stored_as", stored)

	return urlPrefix + stored, f.Name, nil
}

// sanitizeName keeps the base name and strips anything that could escape
// the uploads directory or break a URL.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
