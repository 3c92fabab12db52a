// Package snapshot persists the ledger as a single JSON document so
// restarts keep balances and the current token selection.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"swapdesk/internal/domain"
)

const (
	defaultStateDir = "./state"
	stateFileName   = "ledger.json"
)

// Store reads and writes the ledger snapshot file.
type Store struct {
	path string
}

func getStateDir() string {
	if stateDir := os.Getenv("SWAPDESK_STATE_DIR"); stateDir != "" {
		return stateDir
	}
	return defaultStateDir
}

// NewStore creates a snapshot store, creating the state directory if needed.
// An empty dir falls back to SWAPDESK_STATE_DIR or the default location.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = getStateDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create ledger state dir")
	}

	return &Store{path: filepath.Join(dir, stateFileName)}, nil
}

// State is the persisted ledger schema. Unknown or missing fields default
// to empty so future additions stay backward compatible.
type State struct {
	Balances     []StoredToken `json:"balances"`
	SelectedFrom string        `json:"selected_from,omitempty"`
	SelectedTo   string        `json:"selected_to,omitempty"`
}

// StoredToken is a serializable snapshot of domain.Token.
type StoredToken struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Price   string `json:"price"`
	Balance string `json:"balance"`
}

// Load reads the snapshot from disk. Returns nil when no snapshot exists.
func (s *Store) Load() (*State, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "read ledger snapshot")
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "decode ledger snapshot")
	}

	return &state, nil
}

// Save writes the snapshot to disk atomically via temp file, so a crash
// mid-write never corrupts the previous snapshot.
func (s *Store) Save(state State) error {
	if s == nil || s.path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode ledger snapshot")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write ledger snapshot temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist ledger snapshot")
	}

	return nil
}

// NewStoredToken converts domain.Token into its stored representation.
func NewStoredToken(t domain.Token) StoredToken {
	return StoredToken{
		Symbol:  t.Symbol,
		Name:    t.Name,
		Price:   t.Price.String(),
		Balance: t.Balance.String(),
	}
}

// ToToken reconstructs domain.Token from stored data.
func (st StoredToken) ToToken() (domain.Token, error) {
	price := decimal.Zero
	if st.Price != "" {
		parsed, err := decimal.NewFromString(st.Price)
		if err != nil {
			return domain.Token{}, errors.Wrapf(err, "decode %s price", st.Symbol)
		}
		price = parsed
	}

	balance := decimal.Zero
	if st.Balance != "" {
		parsed, err := decimal.NewFromString(st.Balance)
		if err != nil {
			return domain.Token{}, errors.Wrapf(err, "decode %s balance", st.Symbol)
		}
		balance = parsed
	}

	return domain.Token{
		Symbol:  st.Symbol,
		Name:    st.Name,
		Price:   price,
		Balance: balance,
	}, nil
}
