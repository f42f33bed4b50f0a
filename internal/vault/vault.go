package vault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/taskvault/internal/codec"
	"github.com/calvinalkan/taskvault/internal/entity"
)

// Mode selects the storage namespace for one call. It is owned by the
// session layer and passed in explicitly: isolation is a property of when
// the caller reads its session flag, not of anything cached in the store.
type Mode string

// Modes.
const (
	ModeReal Mode = "real"
	ModeDemo Mode = "demo"
)

// demoPrefix namespaces demo-mode entries under the shared key space.
const demoPrefix = "demo:"

// MaxStateBytes is the serialized-size ceiling per stored record, enforced
// before any write attempt.
const MaxStateBytes = 5_000_000

// Store errors.
var (
	ErrStateTooLarge = errors.New("application state too large to save")
	ErrSaveFailed    = errors.New("failed to save application state to storage")
)

// probeKey is used by Available to test the primary backend.
const probeKey = "__vault_probe__"

// Store persists snapshots through a primary backend with an optional
// secondary fallback. The store itself is stateless between calls.
type Store struct {
	primary   Backend
	secondary Backend
}

// New returns a store over the given backends. secondary may be nil, in
// which case there is no fallback chain.
func New(primary, secondary Backend) *Store {
	if primary == nil {
		panic("vault: primary backend is nil")
	}

	return &Store{primary: primary, secondary: secondary}
}

// EffectiveKey maps a logical key to its physical key for the given mode.
// Demo and real entries coexist independently under the same backend.
func EffectiveKey(key string, mode Mode) string {
	if mode == ModeDemo {
		return demoPrefix + key
	}

	return key
}

// Save serializes state and writes it under the effective key. Oversized
// snapshots are rejected before any backend is touched. A primary write
// failure (quota, unavailable) falls back to the secondary; only when the
// whole chain fails does Save return an error.
func (s *Store) Save(key string, mode Mode, state *entity.AppState) error {
	effective := EffectiveKey(key, mode)

	serialized, err := codec.Serialize(state)
	if err != nil {
		return err
	}

	if len(serialized) > MaxStateBytes {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte ceiling",
			ErrStateTooLarge, len(serialized), MaxStateBytes)
	}

	primaryErr := s.primary.Set(effective, serialized)
	if primaryErr == nil {
		return nil
	}

	if s.secondary != nil {
		secondaryErr := s.secondary.Set(effective, serialized)
		if secondaryErr == nil {
			return nil
		}

		return fmt.Errorf("%w: primary: %v; secondary: %v", ErrSaveFailed, primaryErr, secondaryErr)
	}

	return fmt.Errorf("%w: primary: %v", ErrSaveFailed, primaryErr)
}

// Load reads the effective key from the primary backend, falling back to
// the secondary when the entry is absent or blank. A snapshot that fails to
// deserialize is treated as corruption: the offending entry is removed from
// the backend it came from and Load returns nil with no error. A missing
// entry also returns nil, nil.
func (s *Store) Load(key string, mode Mode) (*entity.AppState, error) {
	effective := EffectiveKey(key, mode)

	serialized, backend := s.lookup(effective)
	if backend == nil {
		return nil, nil
	}

	state, err := codec.Deserialize(serialized)
	if err != nil {
		if codec.IsDecodeError(err) {
			// Self-heal: a corrupted snapshot is unrecoverable, and leaving
			// it in place would fail every future load the same way.
			_ = backend.Delete(effective)

			return nil, nil
		}

		return nil, err
	}

	return state, nil
}

// lookup returns the stored value and the backend that held it, or a nil
// backend when no usable entry exists. Blank values count as absent.
func (s *Store) lookup(effective string) (string, Backend) {
	value, ok, err := s.primary.Get(effective)
	if err == nil && ok && strings.TrimSpace(value) != "" {
		return value, s.primary
	}

	if s.secondary == nil {
		return "", nil
	}

	value, ok, err = s.secondary.Get(effective)
	if err == nil && ok && strings.TrimSpace(value) != "" {
		return value, s.secondary
	}

	return "", nil
}

// Clear removes the effective key from the primary backend.
func (s *Store) Clear(key string, mode Mode) error {
	err := s.primary.Delete(EffectiveKey(key, mode))
	if err != nil {
		return fmt.Errorf("clear stored state: %w", err)
	}

	return nil
}

// Available probes the primary backend with a write/read/delete cycle.
func (s *Store) Available() bool {
	err := s.primary.Set(probeKey, "ok")
	if err != nil {
		return false
	}

	value, ok, err := s.primary.Get(probeKey)
	if err != nil || !ok || value != "ok" {
		return false
	}

	return s.primary.Delete(probeKey) == nil
}

// Size returns the stored byte size for the effective key, 0 when absent.
func (s *Store) Size(key string, mode Mode) (int, error) {
	effective := EffectiveKey(key, mode)

	value, ok, err := s.primary.Get(effective)
	if err != nil {
		return 0, fmt.Errorf("read stored state size: %w", err)
	}

	if !ok {
		return 0, nil
	}

	return len(value), nil
}

// Keys lists every key in the primary backend, demo prefixes included.
func (s *Store) Keys() ([]string, error) {
	keys, err := s.primary.Keys()
	if err != nil {
		return nil, fmt.Errorf("list stored keys: %w", err)
	}

	return keys, nil
}

// TotalSize returns the summed byte size of every entry in the primary
// backend, across both namespaces.
func (s *Store) TotalSize() (int, error) {
	keys, err := s.primary.Keys()
	if err != nil {
		return 0, fmt.Errorf("list stored keys: %w", err)
	}

	total := 0

	for _, key := range keys {
		value, ok, getErr := s.primary.Get(key)
		if getErr != nil {
			return 0, fmt.Errorf("read stored entry %q: %w", key, getErr)
		}

		if ok {
			total += len(value)
		}
	}

	return total, nil
}
