package repository

import (
	"fmt"

	"github.com/fabienng71/Rclx-sub001/models"
)

// QuotationSchemaVersion is the version written with every quotation snapshot.
const QuotationSchemaVersion = 2

// Migration upgrades raw quotation state by exactly one version.
type Migration func(state map[string]interface{}) (map[string]interface{}, error)

// quotationMigrations[i] takes state at version i to version i+1.
var quotationMigrations = []Migration{
	AddArchivedCollection,
	BackfillQuotationStatus,
}

// AddArchivedCollection is v0 -> v1: the archive did not exist before v1.
func AddArchivedCollection(state map[string]interface{}) (map[string]interface{}, error) {
	out := copyState(state)
	if _, ok := out["archivedQuotations"]; !ok {
		out["archivedQuotations"] = []interface{}{}
	}
	if _, ok := out["savedQuotations"]; !ok {
		out["savedQuotations"] = []interface{}{}
	}
	return out, nil
}

// BackfillQuotationStatus is v1 -> v2: quotations saved before statuses existed become drafts.
func BackfillQuotationStatus(state map[string]interface{}) (map[string]interface{}, error) {
	out := copyState(state)
	for _, key := range []string{"savedQuotations", "archivedQuotations"} {
		raw, ok := out[key]
		if !ok || raw == nil {
			out[key] = []interface{}{}
			continue
		}
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: expected a list, got %T", key, raw)
		}
		next := make([]interface{}, len(list))
		for i, item := range list {
			q, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s[%d]: expected an object, got %T", key, i, item)
			}
			qc := make(map[string]interface{}, len(q)+1)
			for k, v := range q {
				qc[k] = v
			}
			if s, _ := qc["status"].(string); s == "" {
				qc["status"] = string(models.StatusDraft)
			}
			next[i] = qc
		}
		out[key] = next
	}
	return out, nil
}

// MigrateQuotationState applies every migration from version up to QuotationSchemaVersion.
func MigrateQuotationState(state map[string]interface{}, version int) (map[string]interface{}, error) {
	if version > QuotationSchemaVersion {
		return nil, fmt.Errorf("%w: %d > %d", ErrSchemaTooNew, version, QuotationSchemaVersion)
	}
	if version < 0 {
		version = 0
	}
	if state == nil {
		state = map[string]interface{}{}
	}
	var err error
	for v := version; v < QuotationSchemaVersion; v++ {
		state, err = quotationMigrations[v](state)
		if err != nil {
			return nil, fmt.Errorf("migrate quotation state v%d->v%d: %w", v, v+1, err)
		}
	}
	return state, nil
}

func copyState(state map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(state)+1)
	for k, v := range state {
		out[k] = v
	}
	return out
}
