// Package index creates the collection's unique and lookup indexes once the
// data has been normalized.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/docmigrate/internal/doc"
)

// Creator creates one index. Store implementations satisfy it.
type Creator interface {
	CreateIndex(ctx context.Context, collection string, spec doc.IndexSpec) error
}

// Unique natural keys and secondary lookup fields.
var (
	UniqueFields    = []string{"code", "email"}
	SecondaryFields = []string{"status", "type", "address.province", "address.district", "address.city"}
)

// Name returns the index name for a field: providers_address_city_idx.
func Name(collection, field string, unique bool) string {
	suffix := "idx"
	if unique {
		suffix = "uniq"
	}
	return collection + "_" + strings.ReplaceAll(field, ".", "_") + "_" + suffix
}

// Specs returns the full index set for a collection, unique indexes first.
func Specs(collection string) []doc.IndexSpec {
	specs := make([]doc.IndexSpec, 0, len(UniqueFields)+len(SecondaryFields))
	for _, f := range UniqueFields {
		specs = append(specs, doc.IndexSpec{Name: Name(collection, f, true), Field: f, Unique: true})
	}
	for _, f := range SecondaryFields {
		specs = append(specs, doc.IndexSpec{Name: Name(collection, f, false), Field: f})
	}
	return specs
}

// Manager gates index creation on the precheck result and the run mode.
type Manager struct {
	creator    Creator
	collection string
	dryRun     bool
	logger     *slog.Logger
}

// NewManager creates a Manager.
func NewManager(c Creator, collection string, dryRun bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{creator: c, collection: collection, dryRun: dryRun, logger: logger}
}

// EnsureIndexes creates every index in Specs and returns the names it
// created. With collisions, or in dry-run, it creates nothing and logs a
// warning; each collision is flagged for manual follow-up.
// Creation errors are returned: indexing is the last stage and the data is
// already normalized.
func (m *Manager) EnsureIndexes(ctx context.Context, collisions []doc.Collision) ([]string, error) {
	if m.dryRun {
		m.logger.Warn("dry-run: skipping index creation", "collection", m.collection)
		return nil, nil
	}
	if len(collisions) > 0 {
		m.logger.Warn("duplicate keys present: skipping index creation",
			"collection", m.collection, "collisions", len(collisions))
		for _, c := range collisions {
			m.logger.Warn("manual follow-up required",
				"collection", m.collection, "key", c.Key, "value", c.Value, "count", c.Count)
		}
		return nil, nil
	}

	var created []string
	for _, spec := range Specs(m.collection) {
		if err := m.creator.CreateIndex(ctx, m.collection, spec); err != nil {
			return created, fmt.Errorf("ensure indexes: %w", err)
		}
		m.logger.Info("index ensured", "collection", m.collection, "index", spec.Name, "unique", spec.Unique)
		created = append(created, spec.Name)
	}
	return created, nil
}
