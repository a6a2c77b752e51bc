// Package credential keeps the recognition-service credential. The value is
// opaque: it is stored and returned verbatim apart from trimming whitespace.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/zalando/go-keyring"
)

// DefaultKey is the slot holding the credential in the slot backend.
const DefaultKey = "mealcam:recognition-credential"

const (
	keyringService = "mealcam"
	keyringUser    = "recognition-credential"
)

// Store reads and writes the credential.
type Store interface {
	// Get returns the stored credential, or "" when none is set.
	Get(ctx context.Context) (string, error)
	// Set stores value; an empty value is a *domain.ValidationError.
	Set(ctx context.Context, value string) error
	// Clear removes the credential. Clearing an unset credential succeeds.
	Clear(ctx context.Context) error
}

// slotStore is the subset of store.SlotStore the slot backend requires.
type slotStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SlotStore keeps the credential in its own slot, separate from the ledger.
type SlotStore struct {
	slots slotStore
	key   string
}

func NewSlotStore(slots slotStore) *SlotStore {
	return &SlotStore{slots: slots, key: DefaultKey}
}

func (s *SlotStore) Get(ctx context.Context) (string, error) {
	value, found, err := s.slots.Get(ctx, s.key)
	if err != nil {
		return "", &domain.PersistenceError{Op: "read credential", Err: err}
	}
	if !found {
		return "", nil
	}
	return string(value), nil
}

func (s *SlotStore) Set(ctx context.Context, value string) error {
	value, err := validate(value)
	if err != nil {
		return err
	}
	if err := s.slots.Put(ctx, s.key, []byte(value)); err != nil {
		return &domain.PersistenceError{Op: "write credential", Err: err}
	}
	return nil
}

func (s *SlotStore) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return &domain.PersistenceError{Op: "clear credential", Err: err}
	}
	return nil
}

// KeyringStore keeps the credential in the operating system keyring.
type KeyringStore struct {
	service string
	user    string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService, user: keyringUser}
}

func (k *KeyringStore) Get(_ context.Context) (string, error) {
	value, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", &domain.PersistenceError{Op: "read credential", Err: fmt.Errorf("keyring: %w", err)}
	}
	return value, nil
}

func (k *KeyringStore) Set(_ context.Context, value string) error {
	value, err := validate(value)
	if err != nil {
		return err
	}
	if err := keyring.Set(k.service, k.user, value); err != nil {
		return &domain.PersistenceError{Op: "write credential", Err: fmt.Errorf("keyring: %w", err)}
	}
	return nil
}

func (k *KeyringStore) Clear(_ context.Context) error {
	err := keyring.Delete(k.service, k.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return &domain.PersistenceError{Op: "clear credential", Err: fmt.Errorf("keyring: %w", err)}
	}
	return nil
}

func validate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &domain.ValidationError{Field: "credential", Msg: "must not be empty"}
	}
	return value, nil
}
