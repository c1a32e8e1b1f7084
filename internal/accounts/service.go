package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pla-ledger/pla/internal/model"
)

// File is the registry location relative to the project root.
const File = "accounts/accounts.csv"

// Ledger path prefixes for derived paths.
const (
	AssetPrefix     = "Assets:BR:"
	LiabilityPrefix = "Liabilities:Cartao:"
)

// Registry is the read-only account table shared by every stage of a run.
// Identifiers missing from the table are treated as assets.
type Registry struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewRegistry creates a Registry from a slice of accounts. Later duplicates
// win.
func NewRegistry(accounts []model.Account) *Registry {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Registry{accounts: accounts, byID: byID}
}

// Load reads accounts/accounts.csv from a project root.
func Load(repoRoot string) (*Registry, error) {
	path := filepath.Join(repoRoot, File)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening account registry: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading account registry: %w", err)
	}
	return NewRegistry(accts), nil
}

// All returns all registered accounts in file order.
func (r *Registry) All() []model.Account {
	return r.accounts
}

// Get returns a registered account.
func (r *Registry) Get(id string) (model.Account, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Exists reports whether an identifier is registered.
func (r *Registry) Exists(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Kind returns the account kind, defaulting to asset.
func (r *Registry) Kind(id string) model.AccountKind {
	if a, ok := r.byID[id]; ok && a.Kind.Valid() {
		return a.Kind
	}
	return model.AccountKindAsset
}

// IsAsset reports whether id is an asset (registered or not).
func (r *Registry) IsAsset(id string) bool {
	return r.Kind(id) == model.AccountKindAsset
}

// IsLiability reports whether id is a registered liability.
func (r *Registry) IsLiability(id string) bool {
	return r.Kind(id) == model.AccountKindLiability
}

// Path returns the ledger path of an account.
func (r *Registry) Path(id string) string {
	if a, ok := r.byID[id]; ok && a.Path != "" {
		return a.Path
	}
	if r.IsLiability(id) {
		return LiabilityPrefix + id
	}
	return AssetPrefix + id
}

// ByKind returns all accounts of the given kind.
func (r *Registry) ByKind(kind model.AccountKind) []model.Account {
	var result []model.Account
	for _, a := range r.accounts {
		if a.Kind == kind {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the registry to accounts/accounts.csv.
func (r *Registry) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, filepath.Dir(File))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(repoRoot, File)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating account registry file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, r.accounts); err != nil {
		return fmt.Errorf("writing account registry: %w", err)
	}
	return nil
}
