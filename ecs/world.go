package ecs

import (
	"context"
	"sort"

	"github.com/milk9111/spriteatlas/ecs/component"
)

// World owns entities, components, resources, events, and system order.
type World struct {
	ctx        context.Context
	entities   entityStore
	components map[component.ComponentID]*SparseSet
	resources  resourceMap
	events     EventQueue
	scheduler  *Scheduler
	frame      uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		ctx:        context.Background(),
		components: make(map[component.ComponentID]*SparseSet),
		resources:  make(resourceMap),
		scheduler:  NewScheduler(),
	}
}

// SetContext sets the context systems run under. It carries the logger.
func (w *World) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	w.ctx = ctx
}

func (w *World) Context() context.Context {
	return w.ctx
}

// Frame is the number of completed Update calls.
func (w *World) Frame() uint64 {
	return w.frame
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes an entity and all its components.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	for _, set := range w.components {
		set.Remove(int(e.id()))
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// Entities returns all live entities in id order.
func (w *World) Entities() []Entity {
	return w.entities.all()
}

// AddComponent stores value under kind for e, replacing any previous value.
func (w *World) AddComponent(e Entity, kind component.Kinded, value any) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if value == nil {
		return component.ErrNilComponent
	}
	set, ok := w.components[kind.ID()]
	if !ok {
		set = &SparseSet{}
		w.components[kind.ID()] = set
	}
	set.Set(int(e.id()), value)
	return nil
}

func (w *World) RemoveComponent(e Entity, kind component.Kinded) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	return w.components[kind.ID()].Remove(int(e.id()))
}

func (w *World) HasComponent(e Entity, kind component.Kinded) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	return w.components[kind.ID()].Has(int(e.id()))
}

func (w *World) GetComponent(e Entity, kind component.Kinded) (any, bool) {
	if !w.entities.isAlive(e) {
		return nil, false
	}
	set := w.components[kind.ID()]
	if !set.Has(int(e.id())) {
		return nil, false
	}
	return set.Get(int(e.id())), true
}

// Query returns live entities that have every kind, in id order.
func (w *World) Query(kinds ...component.Kinded) []Entity {
	if len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		set, ok := w.components[k.ID()]
		if !ok || set.Len() == 0 {
			return nil
		}
		sets = append(sets, set)
	}
	// iterate the smallest set
	sort.Slice(sets, func(i, j int) bool { return sets[i].Len() < sets[j].Len() })

	out := make([]Entity, 0, sets[0].Len())
	for _, id := range sets[0].Entities() {
		matched := true
		for _, other := range sets[1:] {
			if !other.Has(id) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		idx := id - 1
		out = append(out, makeEntity(entityID(id), w.entities.gens[idx]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id() < out[j].id() })
	return out
}

// First returns the lowest-id entity with kind.
func (w *World) First(kind component.Kinded) (Entity, bool) {
	ents := w.Query(kind)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	w.scheduler.Add(s)
}

// Update runs all systems once, then retires events older than one frame.
func (w *World) Update() {
	w.scheduler.Update(w)
	w.events.flush()
	w.frame++
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	return &w.events
}
