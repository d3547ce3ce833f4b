package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/storage"
)

const quotationKey = "quotation-storage"

type quotationState struct {
	SavedQuotations    []models.Quotation `json:"savedQuotations"`
	ArchivedQuotations []models.Quotation `json:"archivedQuotations"`
}

func (st quotationState) clone() quotationState {
	return quotationState{
		SavedQuotations:    cloneList(st.SavedQuotations),
		ArchivedQuotations: cloneList(st.ArchivedQuotations),
	}
}

type quotationEnvelope struct {
	State   quotationState `json:"state"`
	Version int            `json:"version"`
}

// QuotationStore owns the active and archived quotation collections, both newest first.
// A quotation id is present in at most one collection at any time.
type QuotationStore struct {
	mu    sync.Mutex
	store storage.Storage
	state quotationState
}

// NewQuotationStore hydrates state, migrating and rewriting older snapshots.
func NewQuotationStore(ctx context.Context, store storage.Storage) (*QuotationStore, error) {
	s := &QuotationStore{store: store}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the persisted snapshot, discarding in-memory state.
func (s *QuotationStore) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, version, err := s.load(ctx)
	if err != nil {
		return err
	}
	if version < QuotationSchemaVersion {
		if err := s.persist(ctx, next); err != nil {
			return err
		}
		log.Printf("quotations: migrated snapshot from v%d to v%d", version, QuotationSchemaVersion)
	}
	s.state = next
	return nil
}

// load reads and migrates the persisted state. An absent key is an empty current-version state.
// Callers hold s.mu.
func (s *QuotationStore) load(ctx context.Context) (quotationState, int, error) {
	raw, err := s.store.Get(ctx, quotationKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return quotationState{SavedQuotations: []models.Quotation{}, ArchivedQuotations: []models.Quotation{}}, QuotationSchemaVersion, nil
	}
	if err != nil {
		return quotationState{}, 0, err
	}

	state, version, err := decodeQuotationSnapshot(raw)
	if err != nil {
		return quotationState{}, 0, err
	}
	migrated, err := MigrateQuotationState(state, version)
	if err != nil {
		return quotationState{}, 0, err
	}

	buf, err := json.Marshal(migrated)
	if err != nil {
		return quotationState{}, 0, fmt.Errorf("failed to re-encode quotation state: %w", err)
	}
	var next quotationState
	if err := json.Unmarshal(buf, &next); err != nil {
		return quotationState{}, 0, fmt.Errorf("failed to decode quotation state: %w", err)
	}
	if next.SavedQuotations == nil {
		next.SavedQuotations = []models.Quotation{}
	}
	if next.ArchivedQuotations == nil {
		next.ArchivedQuotations = []models.Quotation{}
	}
	return next, version, nil
}

// decodeQuotationSnapshot accepts the versioned envelope and the bare v0 state object.
func decodeQuotationSnapshot(raw []byte) (map[string]interface{}, int, error) {
	var top map[string]interface{}
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", quotationKey, err)
	}
	inner, ok := top["state"].(map[string]interface{})
	if !ok {
		return top, 0, nil
	}
	version := 0
	if v, ok := top["version"].(float64); ok {
		version = int(v)
	}
	return inner, version, nil
}

// Save prepends q to the active collection. A quotation needs a sender, and its id
// must not already be in either collection.
func (s *QuotationStore) Save(ctx context.Context, q models.Quotation) error {
	if q.Sender == nil {
		return fmt.Errorf("%w: a sender must be selected before saving", ErrValidation)
	}
	if q.ID == "" {
		return fmt.Errorf("%w: quotation id is required", ErrValidation)
	}
	if q.Status == "" {
		q.Status = models.StatusDraft
	}
	if !q.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}
	q = q.Clone()
	return s.mutate(ctx, func(st *quotationState) (bool, error) {
		if indexOf(st.SavedQuotations, q.ID) >= 0 || indexOf(st.ArchivedQuotations, q.ID) >= 0 {
			return false, fmt.Errorf("%w: %s", ErrDuplicateQuotation, q.ID)
		}
		st.SavedQuotations = prepend(st.SavedQuotations, q)
		return true, nil
	})
}

// SetStatus updates the status wherever the quotation lives. Unknown ids are ignored.
func (s *QuotationStore) SetStatus(ctx context.Context, id string, status models.QuotationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.mutate(ctx, func(st *quotationState) (bool, error) {
		for _, list := range [][]models.Quotation{st.SavedQuotations, st.ArchivedQuotations} {
			if i := indexOf(list, id); i >= 0 {
				if list[i].Status == status {
					return false, nil
				}
				list[i].Status = status
				return true, nil
			}
		}
		return false, nil
	})
}

// Archive moves a quotation from active to archived. No-op unless it is active.
func (s *QuotationStore) Archive(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *quotationState) (bool, error) {
		i := indexOf(st.SavedQuotations, id)
		if i < 0 {
			return false, nil
		}
		q := st.SavedQuotations[i]
		st.SavedQuotations = removeAt(st.SavedQuotations, i)
		st.ArchivedQuotations = prepend(st.ArchivedQuotations, q)
		return true, nil
	})
}

// Restore moves a quotation from archived back to active. No-op unless it is archived.
func (s *QuotationStore) Restore(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *quotationState) (bool, error) {
		i := indexOf(st.ArchivedQuotations, id)
		if i < 0 {
			return false, nil
		}
		q := st.ArchivedQuotations[i]
		st.ArchivedQuotations = removeAt(st.ArchivedQuotations, i)
		st.SavedQuotations = prepend(st.SavedQuotations, q)
		return true, nil
	})
}

// Delete removes the quotation from whichever collection holds it. Idempotent.
func (s *QuotationStore) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *quotationState) (bool, error) {
		if i := indexOf(st.SavedQuotations, id); i >= 0 {
			st.SavedQuotations = removeAt(st.SavedQuotations, i)
			return true, nil
		}
		if i := indexOf(st.ArchivedQuotations, id); i >= 0 {
			st.ArchivedQuotations = removeAt(st.ArchivedQuotations, i)
			return true, nil
		}
		return false, nil
	})
}

// Get returns the quotation and whether it is archived.
func (s *QuotationStore) Get(id string) (models.Quotation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.state.SavedQuotations, id); i >= 0 {
		return s.state.SavedQuotations[i].Clone(), false, nil
	}
	if i := indexOf(s.state.ArchivedQuotations, id); i >= 0 {
		return s.state.ArchivedQuotations[i].Clone(), true, nil
	}
	return models.Quotation{}, false, ErrNotFound
}

func (s *QuotationStore) Active() []models.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.state.SavedQuotations)
}

func (s *QuotationStore) Archived() []models.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.state.ArchivedQuotations)
}

// mutate re-reads the persisted state, runs fn on it, persists the result, then swaps it in.
// Re-reading keeps writes from other processes sharing the backend. Nothing is written when
// fn reports no change, returns an error, or the write fails.
func (s *QuotationStore) mutate(ctx context.Context, fn func(st *quotationState) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.state = current

	next := current.clone()
	changed, err := fn(&next)
	if err != nil || !changed {
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *QuotationStore) persist(ctx context.Context, st quotationState) error {
	raw, err := json.Marshal(quotationEnvelope{State: st, Version: QuotationSchemaVersion})
	if err != nil {
		return fmt.Errorf("failed to encode quotations: %w", err)
	}
	if err := s.store.Set(ctx, quotationKey, raw); err != nil {
		return fmt.Errorf("failed to persist quotations: %w", err)
	}
	return nil
}

func indexOf(list []models.Quotation, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func prepend(list []models.Quotation, q models.Quotation) []models.Quotation {
	out := make([]models.Quotation, 0, len(list)+1)
	out = append(out, q)
	return append(out, list...)
}

func removeAt(list []models.Quotation, i int) []models.Quotation {
	out := make([]models.Quotation, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func cloneList(list []models.Quotation) []models.Quotation {
	out := make([]models.Quotation, len(list))
	for i, q := range list {
		out[i] = q.Clone()
	}
	return out
}
