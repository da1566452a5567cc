package seeder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

type Seeder struct {
	generator *DataGenerator
	graph     *DependencyGraph
	entities  map[string]*Entity
	names     []string
	logger    *zap.Logger
}

// NewSeeder wires a generator to a set of entities. With no entities the
// university schema from Entities is used.
func NewSeeder(generator *DataGenerator, logger *zap.Logger, entities ...*Entity) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(entities) == 0 {
		entities = Entities()
	}

	s := &Seeder{
		generator: generator,
		graph:     NewDependencyGraph(),
		entities:  make(map[string]*Entity, len(entities)),
		logger:    logger,
	}
	for _, entity := range entities {
		if _, exists := s.entities[entity.Key]; !exists {
			s.names = append(s.names, entity.Key)
		}
		s.entities[entity.Key] = entity
		s.graph.AddEntity(entity)
	}
	return s
}

func (s *Seeder) Entity(key string) (*Entity, bool) {
	e, ok := s.entities[key]
	return e, ok
}

// Entities returns the registered entities in registration order.
func (s *Seeder) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.entities[name])
	}
	return out
}

// Order returns the generation order, resolving it on first use.
func (s *Seeder) Order() ([]string, error) {
	if order := s.graph.GetOrder(); order != nil {
		return order, nil
	}
	return s.graph.BuildInsertionOrder()
}

// ValidateCounts rejects counts for unknown entities and negative counts.
func (s *Seeder) ValidateCounts(counts map[string]int) error {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := s.entities[key]; !ok {
			return fmt.Errorf("count for %q: %w", key, ErrUnknownEntity)
		}
		if counts[key] < 0 {
			return fmt.Errorf("count for %q must not be negative, got %d", key, counts[key])
		}
	}
	return nil
}

// ValidateUnique checks that every "table.column" names a text column.
func (s *Seeder) ValidateUnique(fields []string) error {
	for _, field := range fields {
		parts := strings.SplitN(strings.ToLower(field), ".", 2)
		if len(parts) != 2 {
			return fmt.Errorf("unique field %q must look like table.column", field)
		}
		entity, ok := s.entities[parts[0]]
		if !ok {
			return fmt.Errorf("unique field %q: %w", field, ErrUnknownEntity)
		}
		found := false
		for _, col := range entity.Columns {
			if col.Name == parts[1] {
				if col.Kind != types.KindText {
					return fmt.Errorf("unique field %q is not a text column", field)
				}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unique field %q: entity %s has no column %s", field, entity.Key, parts[1])
		}
	}
	return nil
}

func (s *Seeder) countFor(entity *Entity, counts map[string]int) int {
	if n, ok := counts[entity.Key]; ok {
		return n
	}
	return entity.DefaultCount
}

// Seed generates every registered entity in dependency order, then backfills
// deferred references.
func (s *Seeder) Seed(cfg SeedConfig) (*Dataset, error) {
	if err := s.ValidateCounts(cfg.Counts); err != nil {
		return nil, err
	}

	order, err := s.Order()
	if err != nil {
		return nil, fmt.Errorf("failed to build generation order: %w", err)
	}
	// unique values only have to be distinct within one dataset
	s.generator.ClearUnique()

	s.logger.Info("generation order resolved",
		zap.Int64("seed", s.generator.Seed()),
		zap.String("order", strings.Join(order, " -> ")),
	)

	dataset := &Dataset{
		Order:  order,
		Tables: make(map[string]*types.Table, len(order)),
		names:  s.names,
	}

	for _, key := range order {
		entity := s.entities[key]
		start := time.Now()

		parents := make(map[string]*types.Table)
		for _, dep := range entity.Dependencies() {
			parents[dep] = dataset.Tables[dep]
		}

		table, err := entity.Build(&BuildContext{
			Gen:           s.generator,
			Count:         s.countFor(entity, cfg.Counts),
			Parents:       parents,
			Probabilities: cfg.Probabilities,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", entity.Name, err)
		}
		s.markUnique(entity.Key, table)
		dataset.Tables[key] = table

		took := time.Since(start)
		if cfg.Observe != nil {
			cfg.Observe(table.Name, table.Len(), took)
		}
		s.logger.Debug("table generated",
			zap.String("table", table.Name),
			zap.Int("rows", table.Len()),
			zap.Duration("took", took),
		)
	}

	if err := s.postProcess(dataset); err != nil {
		return nil, err
	}

	s.logger.Info("generation finished", zap.Int("tables", len(dataset.Tables)))
	return dataset, nil
}

func (s *Seeder) markUnique(key string, table *types.Table) {
	for i := range table.Columns {
		if s.generator.IsUnique(key, table.Columns[i].Name) {
			table.Columns[i].Unique = true
		}
	}
}

func (s *Seeder) postProcess(dataset *Dataset) error {
	departments, okDept := dataset.Tables["departments"]
	staff, okStaff := dataset.Tables["staff"]
	if !okDept || !okStaff {
		return nil
	}
	if err := AssignHeads(s.generator, departments, staff); err != nil {
		return fmt.Errorf("failed to assign heads of department: %w", err)
	}
	s.logger.Debug("heads of department assigned", zap.Int("departments", departments.Len()))
	return nil
}

// AssignHeads gives each department a distinct head drawn from staff.
func AssignHeads(g *DataGenerator, departments, staff *types.Table) error {
	heads, err := g.SampleDistinct(staff.Keys(), departments.Len())
	if err != nil {
		return err
	}
	for i, head := range heads {
		if err := departments.Set(i, "hod_id", types.Some(head)); err != nil {
			return err
		}
	}
	return nil
}
