// Package layout descreve a árvore estática de componentes da página,
// independente de como ela é desenhada.
package layout

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tipos de componente
const (
	KindDiv      = "div"
	KindDropdown = "dropdown"
	KindGraph    = "graph"
)

// IDs dos componentes do dashboard
const (
	SelectorID    = "project-selector"
	TimelineID    = "project-timeline"
	PerformanceID = "team-performance"
	EfficiencyID  = "efficiency-metrics"
)

//go:embed dashboard.yaml
var defaultDocument []byte

var (
	ErrInvalidKind       = errors.New("tipo de componente inválido")
	ErrDuplicateID       = errors.New("id de componente duplicado")
	ErrMissingID         = errors.New("componente sem id")
	ErrComponentNotFound = errors.New("componente não encontrado")
)

// Option é uma opção do seletor
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Component é um nó da árvore de layout
type Component struct {
	Kind     string       `json:"kind" yaml:"kind"`
	ID       string       `json:"id" yaml:"id"`
	Label    string       `json:"label,omitempty" yaml:"label,omitempty"`
	Options  []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	Value    string       `json:"value,omitempty" yaml:"value,omitempty"`
	Children []*Component `json:"children,omitempty" yaml:"children,omitempty"`
}

// Parse lê uma árvore de layout em YAML e valida tipos e ids
func Parse(doc []byte) (*Component, error) {
	var root Component
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("ler layout: %w", err)
	}
	if err := validate(&root, make(map[string]bool)); err != nil {
		return nil, err
	}
	return &root, nil
}

// Default monta o layout do dashboard com as opções de Sprint. O valor
// inicial do seletor é o primeiro Sprint.
func Default(sprints []string) (*Component, error) {
	root, err := Parse(defaultDocument)
	if err != nil {
		return nil, err
	}

	selector := root.Find(SelectorID)
	if selector == nil {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, SelectorID)
	}
	selector.SetOptions(sprints)

	return root, nil
}

// SetOptions substitui as opções do seletor e escolhe a primeira como valor
func (c *Component) SetOptions(values []string) {
	c.Options = make([]Option, 0, len(values))
	for _, v := range values {
		c.Options = append(c.Options, Option{Label: v, Value: v})
	}
	c.Value = ""
	if len(values) > 0 {
		c.Value = values[0]
	}
}

// Find busca um componente pelo id em profundidade
func (c *Component) Find(id string) *Component {
	if c.ID == id {
		return c
	}
	for _, child := range c.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Graphs retorna os ids dos gráficos na ordem do documento
func (c *Component) Graphs() []string {
	var ids []string
	c.walk(func(n *Component) {
		if n.Kind == KindGraph {
			ids = append(ids, n.ID)
		}
	})
	return ids
}

func (c *Component) walk(fn func(*Component)) {
	fn(c)
	for _, child := range c.Children {
		child.walk(fn)
	}
}

func validate(c *Component, seen map[string]bool) error {
	switch c.Kind {
	case KindDiv, KindDropdown, KindGraph:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, c.Kind)
	}
	if c.ID == "" {
		return ErrMissingID
	}
	if seen[c.ID] {
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}
	seen[c.ID] = true

	for _, child := range c.Children {
		if err := validate(child, seen); err != nil {
			return err
		}
	}
	return nil
}
