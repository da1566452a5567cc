package seeder

import (
	"time"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

type SeedConfig struct {
	Counts        map[string]int // Per-entity row counts, keyed by entity key
	Probabilities Probabilities
	// Observe, when set, is called after each table is generated.
	Observe func(table string, rows int, took time.Duration)
}

// Probabilities of an optional column being left unset.
type Probabilities struct {
	MembershipEndUnset float64
	BorrowReturnUnset  float64
}

func DefaultProbabilities() Probabilities {
	return Probabilities{
		MembershipEndUnset: 0.2,
		BorrowReturnUnset:  0.3,
	}
}

type BuildContext struct {
	Gen           *DataGenerator
	Count         int
	Parents       map[string]*types.Table
	Probabilities Probabilities
}

func (c *BuildContext) Parent(key string) *types.Table {
	return c.Parents[key]
}

type Entity struct {
	Key          string // config key and graph node, e.g. library_memberships
	Name         string // table, collection and file name, e.g. LibraryMemberships
	Columns      []types.Column
	DefaultCount int
	Build        func(ctx *BuildContext) (*types.Table, error)
}

// Dependencies lists the entities whose keys must exist before this one
// is generated.
func (e *Entity) Dependencies() []string {
	var deps []string
	seen := make(map[string]bool)
	for _, col := range e.Columns {
		if !col.IsFK() || col.Deferred || seen[col.RefTable] {
			continue
		}
		seen[col.RefTable] = true
		deps = append(deps, col.RefTable)
	}
	return deps
}

type Dataset struct {
	Order  []string
	Tables map[string]*types.Table
	names  []string
}

// Ordered returns the tables in registration order.
func (d *Dataset) Ordered() []*types.Table {
	tables := make([]*types.Table, 0, len(d.names))
	for _, key := range d.names {
		if t, ok := d.Tables[key]; ok {
			tables = append(tables, t)
		}
	}
	return tables
}

