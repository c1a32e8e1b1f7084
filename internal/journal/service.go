package journal

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pla-ledger/pla/internal/model"
)

// Service reads and writes Beancount ledger files.
type Service struct {
	currency string
	log      zerolog.Logger
}

// NewService creates a journal Service.
func NewService(currency string, log zerolog.Logger) *Service {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Service{currency: currency, log: log}
}

// ExistingOrigins scans ledger files for origem_id values. Missing files are
// skipped.
func (s *Service) ExistingOrigins(paths ...string) (map[string]bool, error) {
	all := make(map[string]bool)
	for _, path := range paths {
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening ledger %s: %w", path, err)
		}
		origins, err := ReadOrigins(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading ledger %s: %w", path, err)
		}
		for o := range origins {
			all[o] = true
		}
		s.log.Debug().Str("path", path).Int("origins", len(origins)).Msg("scanned ledger")
	}
	return all, nil
}

// Append validates postings and appends them to path in a single write.
func (s *Service) Append(path string, postings []model.Posting) error {
	data, err := s.render(postings)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("appending postings: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing ledger: %w", err)
	}
	s.log.Info().Str("path", path).Int("postings", len(postings)).Msg("appended postings")
	return nil
}

// Replace validates postings and atomically replaces path with them.
func (s *Service) Replace(path string, postings []model.Posting) error {
	data, err := s.render(postings)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	s.log.Info().Str("path", path).Int("postings", len(postings)).Msg("wrote ledger")
	return nil
}

// MergeOpenDirectives rewrites path so it opens every account it already
// opened plus the given ones.
func (s *Service) MergeOpenDirectives(path string, accounts []string) (int, error) {
	var existing []string
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return 0, fmt.Errorf("opening accounts ledger: %w", err)
	default:
		existing, err = ReadOpenAccounts(f)
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("reading accounts ledger: %w", err)
		}
	}

	merged := append(existing, accounts...)
	var buf bytes.Buffer
	if err := WriteOpenDirectives(&buf, merged, OpenDate, s.currency); err != nil {
		return 0, err
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return 0, err
	}
	n := strings.Count(buf.String(), "\n")
	s.log.Info().Str("path", path).Int("accounts", n).Msg("wrote open directives")
	return n, nil
}

func (s *Service) render(postings []model.Posting) ([]byte, error) {
	if verrs := ValidatePostings(postings); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}
	var buf bytes.Buffer
	if err := WritePostings(&buf, postings, s.currency); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
