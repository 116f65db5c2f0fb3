package dsl

import (
	"fmt"

	"github.com/aretw0/cuepoint/pkg/adapters/memory"
	"github.com/aretw0/cuepoint/pkg/domain"
)

// Builder assembles a unit configuration.
type Builder struct {
	cfg     domain.Config
	nodes   map[string]*NodeBuilder
	order   []string
	objects map[string]*ObjectBuilder
}

// New creates an empty unit builder.
func New() *Builder {
	return &Builder{
		nodes:   make(map[string]*NodeBuilder),
		objects: make(map[string]*ObjectBuilder),
	}
}

// Variable declares a typed variable with its default value.
func (b *Builder) Variable(name, typ string, def any) *Builder {
	if b.cfg.Variables == nil {
		b.cfg.Variables = make(map[string]domain.VariableDef)
	}
	b.cfg.Variables[name] = domain.VariableDef{Type: typ, Default: def}
	return b
}

// Course sets the course metadata used for progress variables.
func (b *Builder) Course(title string, totalUnits, currentUnit int) *Builder {
	b.cfg.CourseInfo = &domain.CourseInfo{Title: title, TotalUnits: totalUnits, CurrentUnit: currentUnit}
	return b
}

// Node adds a document node. If the node already exists, it returns the
// existing builder.
func (b *Builder) Node(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.NodeDef{ID: id}}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Object declares the states of an interactive object. If the object
// already exists, it returns the existing builder.
func (b *Builder) Object(id string) *ObjectBuilder {
	if ob, ok := b.objects[id]; ok {
		return ob
	}
	ob := &ObjectBuilder{def: domain.ObjectDef{States: make(map[string]domain.StateDef)}}
	b.objects[id] = ob
	return ob
}

// On starts a trigger for an event on a target selector.
func (b *Builder) On(event, target string) *TriggerBuilder {
	b.cfg.Triggers = append(b.cfg.Triggers, domain.TriggerConfig{Event: event, EventTarget: target})
	return &TriggerBuilder{builder: b, index: len(b.cfg.Triggers) - 1}
}

// Branch starts the rule list of a decision point.
func (b *Builder) Branch(point string) *BranchBuilder {
	if b.cfg.Branching == nil {
		b.cfg.Branching = make(map[string][]domain.BranchRule)
	}
	return &BranchBuilder{builder: b, point: point}
}

// Config returns the assembled configuration.
func (b *Builder) Config() *domain.Config {
	cfg := b.cfg
	cfg.Nodes = make([]domain.NodeDef, 0, len(b.order))
	for _, id := range b.order {
		cfg.Nodes = append(cfg.Nodes, b.nodes[id].node)
	}
	if len(b.objects) > 0 {
		cfg.Objects = make(map[string]domain.ObjectDef, len(b.objects))
		for id, ob := range b.objects {
			cfg.Objects[id] = ob.def
		}
	}
	return &cfg
}

// Build compiles the unit into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	loader, err := memory.NewFromConfig(b.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
