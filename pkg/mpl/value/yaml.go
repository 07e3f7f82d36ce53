package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxYAMLNodes bounds alias expansion so a small document cannot expand into
// an unbounded value.
const maxYAMLNodes = 1 << 20

// FromYAML parses YAML text into a Value.
//
// Anchors, aliases and merge keys are resolved. An empty document is null, a
// single document is returned as is and several documents become an array of
// documents. Non-finite floats are rejected since a Value cannot hold them.
func FromYAML(data []byte) (Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []Value
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Value{}, err
		}

		c := &yamlConverter{}
		v, err := c.convert(&node)
		if err != nil {
			return Value{}, err
		}
		docs = append(docs, v)
	}

	switch len(docs) {
	case 0:
		return Null(), nil
	case 1:
		return docs[0], nil
	default:
		return Value{typ: ValueTypeArray, arr: docs}, nil
	}
}

type yamlConverter struct {
	visited   int
	expanding map[*yaml.Node]bool // anchors mid-expansion
}

// expandAlias converts the anchored node an alias points at, failing when the
// anchor is reached again from inside its own value.
func (c *yamlConverter) expandAlias(alias, target *yaml.Node, convert func(*yaml.Node) (Value, error)) (Value, error) {
	if c.expanding[target] {
		return Value{}, fmt.Errorf("line %d: alias *%s refers to itself", alias.Line, alias.Value)
	}
	if c.expanding == nil {
		c.expanding = map[*yaml.Node]bool{}
	}
	c.expanding[target] = true
	defer delete(c.expanding, target)
	return convert(target)
}

func (c *yamlConverter) convert(n *yaml.Node) (Value, error) {
	c.visited++
	if c.visited > maxYAMLNodes {
		return Value{}, errors.New("yaml document expands to too many nodes")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return c.convert(n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return Value{}, fmt.Errorf("line %d: unresolved alias", n.Line)
		}
		return c.expandAlias(n, n.Alias, c.convert)

	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{typ: ValueTypeArray, arr: items}, nil

	case yaml.MappingNode:
		return c.convertMapping(n)

	case yaml.ScalarNode:
		return c.convertScalar(n)
	}

	return Value{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func (c *yamlConverter) convertMapping(n *yaml.Node) (Value, error) {
	obj := NewObject()
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}

		key, err := c.convert(k)
		if err != nil {
			return Value{}, err
		}
		val, err := c.convert(v)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, val)
	}

	// Explicit keys win over merged ones; earlier merge sources win over later.
	for _, m := range merges {
		if err := c.mergeInto(obj, m); err != nil {
			return Value{}, err
		}
	}

	return FromObject(obj), nil
}

func (c *yamlConverter) mergeInto(obj *Object, src *yaml.Node) error {
	if src.Kind == yaml.AliasNode && src.Alias != nil {
		_, err := c.expandAlias(src, src.Alias, func(target *yaml.Node) (Value, error) {
			return Value{}, c.mergeInto(obj, target)
		})
		return err
	}

	switch src.Kind {
	case yaml.SequenceNode:
		for _, item := range src.Content {
			if err := c.mergeInto(obj, item); err != nil {
				return err
			}
		}
		return nil

	case yaml.MappingNode:
		merged, err := c.convertMapping(src)
		if err != nil {
			return err
		}
		m, _ := merged.AsObject()
		m.Range(func(key, val Value) bool {
			if _, exists := obj.Get(key); !exists {
				obj.Set(key, val)
			}
			return true
		})
		return nil
	}

	return fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", src.Line)
}

func (c *yamlConverter) convertScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil

	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil

	case "!!int", "!!float":
		var x interface{}
		if err := n.Decode(&x); err != nil {
			return Value{}, err
		}
		v, err := FromNative(x)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if f, ok := v.AsNumber(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return Value{}, fmt.Errorf("line %d: non-finite number %q is not supported", n.Line, n.Value)
		}
		return v, nil

	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return String(n.Value), nil
	}
}

// ToYAML serializes v to a single block-style YAML document with keys in key
// order. Strings that would read back as another type are quoted.
func ToYAML(v Value) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNode(v Value) (*yaml.Node, error) {
	switch v.Type() {
	case ValueTypeNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case ValueTypeBoolean:
		text := "false"
		if v.b {
			text = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: text}, nil

	case ValueTypeNumber:
		text, err := FormatNumber(v.n)
		if err != nil {
			return nil, err
		}
		tag := "!!float"
		if !strings.ContainsAny(text, ".eE") && math.Abs(v.n) < math.MaxInt64 {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}, nil

	case ValueTypeString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}, nil

	case ValueTypeArray:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.arr {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil

	case ValueTypeObject:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.obj.Range(func(key, val Value) bool {
			var kn, vn *yaml.Node
			if kn, err = toNode(key); err != nil {
				return false
			}
			if vn, err = toNode(val); err != nil {
				return false
			}
			m.Content = append(m.Content, kn, vn)
			return true
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	return nil, fmt.Errorf("unsupported value type %q", v.Type())
}
