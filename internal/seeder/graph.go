package seeder

import "fmt"

type DependencyGraph struct {
	entities map[string]*Entity
	names    []string
	order    []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		entities: make(map[string]*Entity),
	}
}

// AddEntity registers an entity. Registration order breaks ties in the
// resolved order.
func (g *DependencyGraph) AddEntity(entity *Entity) {
	if _, exists := g.entities[entity.Key]; !exists {
		g.names = append(g.names, entity.Key)
	}
	g.entities[entity.Key] = entity
}

func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return fmt.Errorf("%w involving entity: %s", ErrCycle, name)
		}
		if visited[name] {
			return nil
		}

		entity, ok := g.entities[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEntity, name)
		}

		temp[name] = true
		for _, dep := range entity.Dependencies() {
			if dep == name {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range g.names {
		if !visited[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	g.order = order
	return order, nil
}

func (g *DependencyGraph) GetOrder() []string {
	return g.order
}
