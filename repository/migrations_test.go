package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/storage"
)

func TestAddArchivedCollection(t *testing.T) {
	in := map[string]interface{}{"savedQuotations": []interface{}{map[string]interface{}{"id": "a"}}}
	out, err := AddArchivedCollection(in)
	if err != nil {
		t.Fatal(err)
	}
	if list, ok := out["archivedQuotations"].([]interface{}); !ok || len(list) != 0 {
		t.Fatalf("expected empty archive, got %#v", out["archivedQuotations"])
	}
	if _, ok := in["archivedQuotations"]; ok {
		t.Fatal("input must not be modified")
	}
}

func TestBackfillQuotationStatus(t *testing.T) {
	in := map[string]interface{}{
		"savedQuotations": []interface{}{
			map[string]interface{}{"id": "a"},
			map[string]interface{}{"id": "b", "status": "sent"},
			map[string]interface{}{"id": "c", "status": ""},
		},
		"archivedQuotations": []interface{}{},
	}
	out, err := BackfillQuotationStatus(in)
	if err != nil {
		t.Fatal(err)
	}
	list := out["savedQuotations"].([]interface{})
	want := []string{"draft", "sent", "draft"}
	for i, w := range want {
		if got := list[i].(map[string]interface{})["status"]; got != w {
			t.Fatalf("item %d: expected %q, got %v", i, w, got)
		}
	}
}

func TestBackfillRejectsMalformedLists(t *testing.T) {
	if _, err := BackfillQuotationStatus(map[string]interface{}{"savedQuotations": "oops"}); err == nil {
		t.Fatal("expected error for non-list collection")
	}
}

func TestMigrateTooNew(t *testing.T) {
	_, err := MigrateQuotationState(map[string]interface{}{}, QuotationSchemaVersion+1)
	if !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("expected ErrSchemaTooNew, got %v", err)
	}
}

func TestLoadBareV0SnapshotIsMigratedAndRewritten(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	v0 := `{"savedQuotations":[{"id":"old-1","customer":{"customerCode":"C-9","companyName":"Legacy Ltd","searchName":"LEG"},` +
		`"items":[{"itemCode":"X","description":"Thing","listPrice":50,"quotePrice":45,"discount":10}],` +
		`"createdAt":"2023-11-02T09:00:00Z","sender":{"name":"A","email":"a@x","phone":"1"}}]}`
	if err := kv.Set(ctx, quotationKey, []byte(v0)); err != nil {
		t.Fatal(err)
	}

	qs, err := NewQuotationStore(ctx, kv)
	if err != nil {
		t.Fatalf("load v0: %v", err)
	}
	active := qs.Active()
	if len(active) != 1 || active[0].Status != models.StatusDraft {
		t.Fatalf("expected one draft quotation, got %+v", active)
	}
	if len(qs.Archived()) != 0 {
		t.Fatal("archive should start empty")
	}

	raw, _ := kv.Get(ctx, quotationKey)
	var env struct {
		State   map[string]json.RawMessage `json:"state"`
		Version int                        `json:"version"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.Version != QuotationSchemaVersion {
		t.Fatalf("migrated snapshot must be rewritten at v%d, got v%d", QuotationSchemaVersion, env.Version)
	}
	if _, ok := env.State["archivedQuotations"]; !ok {
		t.Fatal("rewritten snapshot must contain archivedQuotations")
	}
}

func TestLoadV1Envelope(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	v1 := `{"state":{"savedQuotations":[],"archivedQuotations":[{"id":"arch-1","status":""}]},"version":1}`
	kv.Set(ctx, quotationKey, []byte(v1))

	qs, err := NewQuotationStore(ctx, kv)
	if err != nil {
		t.Fatal(err)
	}
	q, archived, err := qs.Get("arch-1")
	if err != nil || !archived || q.Status != models.StatusDraft {
		t.Fatalf("expected archived draft, got %+v archived=%v err=%v", q, archived, err)
	}
}

func TestLoadTooNewSnapshotFails(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	kv.Set(ctx, quotationKey, []byte(`{"state":{"savedQuotations":[],"archivedQuotations":[]},"version":9}`))
	if _, err := NewQuotationStore(ctx, kv); !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("expected ErrSchemaTooNew, got %v", err)
	}
}
