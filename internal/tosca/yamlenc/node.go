package yamlenc

import (
	"fmt"
	"sort"

	yaml "go.yaml.in/yaml/v4"

	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

// mapping builds a MappingNode from an ordered sequence of (key, node)
// pairs, dropping any pair whose node was elided.
type mapping struct {
	node *yaml.Node
}

func newMapping() *mapping {
	return &mapping{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// put adds key: value unless value is nil (callers pass the result of a
// toNode/elide helper, which returns nil for empty/null values).
func (m *mapping) put(key string, value *yaml.Node) {
	if value == nil {
		return
	}
	m.node.Content = append(m.node.Content, strNode(key), value)
}

func (m *mapping) build() *yaml.Node {
	return m.node
}

// empty reports whether no keys were ever added.
func (m *mapping) empty() bool {
	return len(m.node.Content) == 0
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// scalarNode lets the library infer the right YAML tag/representation
// for a Go scalar (bool, int, float64, string, etc.).
func scalarNode(v any) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("encode scalar %v: %w", v, err)
	}
	return n, nil
}

// strOrNil elides an empty string (the convention this model uses for
// "field not set", since TOSCA has no distinct absent/empty-string
// state for description-like fields).
func strOrNil(s string) *yaml.Node {
	if s == "" {
		return nil
	}
	return strNode(s)
}

func intPtrOrNil(p *int) *yaml.Node {
	if p == nil {
		return nil
	}
	n, _ := scalarNode(*p)
	return n
}

func boolOrNil(set bool, v bool) *yaml.Node {
	if !set {
		return nil
	}
	n, _ := scalarNode(v)
	return n
}

func stringListOrNil(list []string) *yaml.Node {
	if len(list) == 0 {
		return nil
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, s := range list {
		seq.Content = append(seq.Content, strNode(s))
	}
	return seq
}

// valueToNode renders an arbitrary TOSCA value (model.Value = any),
// eliding nil/empty maps and lists recursively. This covers both our
// own ordered.Map-backed fields and plain Go maps/slices that mapper
// code attaches directly (e.g. a tags map copied from Terraform).
func valueToNode(v model.Value) (*yaml.Node, error) {
	if v == nil {
		return nil, nil
	}

	switch t := v.(type) {
	case orderedValueMap:
		return orderedMapToNode(t)
	case map[string]any:
		return plainMapToNode(t)
	case map[string]string:
		if len(t) == 0 {
			return nil, nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := newMapping()
		for _, k := range keys {
			m.put(k, strNode(t[k]))
		}
		return m.build(), nil
	case []any:
		if len(t) == 0 {
			return nil, nil
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			n, err := valueToNode(item)
			if err != nil {
				return nil, err
			}
			if n == nil {
				continue
			}
			seq.Content = append(seq.Content, n)
		}
		if len(seq.Content) == 0 {
			return nil, nil
		}
		return seq, nil
	case []string:
		return stringListOrNil(t), nil
	default:
		return scalarNode(v)
	}
}

// orderedValueMap is an alias used so valueToNode can recognize
// *ordered.Map[model.Value] built by mappers for nested, order-sensitive
// structures (e.g. an ordered "routes" table) without importing a
// second generic instantiation path.
type orderedValueMap = *ordered.Map[model.Value]

func orderedMapToNode(m orderedValueMap) (*yaml.Node, error) {
	if m == nil || m.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	m.Each(func(key string, value model.Value) {
		if firstErr != nil {
			return
		}
		n, err := valueToNode(value)
		if err != nil {
			firstErr = err
			return
		}
		out.put(key, n)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func plainMapToNode(m map[string]any) (*yaml.Node, error) {
	if len(m) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := newMapping()
	for _, k := range keys {
		n, err := valueToNode(m[k])
		if err != nil {
			return nil, err
		}
		out.put(k, n)
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func stringMapToNode(m *ordered.Map[string]) *yaml.Node {
	if m == nil || m.Len() == 0 {
		return nil
	}
	out := newMapping()
	m.Each(func(key string, value string) {
		out.put(key, strOrNil(value))
	})
	if out.empty() {
		return nil
	}
	return out.build()
}
