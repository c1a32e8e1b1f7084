package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pla-ledger/pla/internal/model"
)

// Sentinel errors returned by parsers.
var (
	ErrMalformedRow  = errors.New("malformed row")
	ErrUnknownFormat = errors.New("unknown file format")
)

// Parser converts a budgeting export into rows. account is the source
// account used when a row carries none.
type Parser interface {
	Parse(r io.ReadSeeker, account string) ([]model.Row, error)
	Format() string
}

// Registry holds parsers keyed by file extension.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name   string
	Path   string
	Format string // lower-case extension without the dot
	Size   int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(strings.TrimPrefix(format, "."))]
}

// Formats returns the registered formats, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with the Organizze spreadsheet parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXParser{})
	r.Register(&XLSParser{})
	r.Register(&CSVParser{})
	return r
}

// ParseFile parses one export, deriving the fallback account from its name.
func (r *Registry) ParseFile(path string) ([]model.Row, error) {
	format := formatOf(path)
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("%s: %w %q", filepath.Base(path), ErrUnknownFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := p.Parse(f, AccountFromFilename(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// importDir is the subdirectory for exports and statements.
const importDir = "import"

// processedDir is the subdirectory for processed files.
const processedDir = "import/processed"

// Scan returns files in <repoRoot>/import/ whose extension is one of
// formats. Hidden files, spreadsheet lock files and consolidated outputs are
// skipped.
func Scan(repoRoot string, formats ...string) ([]FileInfo, error) {
	want := make(map[string]bool, len(formats))
	for _, f := range formats {
		want[strings.ToLower(f)] = true
	}

	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
			continue
		}
		if strings.Contains(strings.ToLower(name), "unificado") {
			continue
		}
		format := formatOf(name)
		if !want[format] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, FileInfo{
			Name:   name,
			Path:   filepath.Join(dir, name),
			Format: format,
			Size:   info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

func formatOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
