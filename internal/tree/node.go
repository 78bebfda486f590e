// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree models the loosely structured documents the register
// serves: an ordered tree of mappings, sequences, and scalar strings.
// Sections come and go between trials and fields repeat, so the package
// favors key search over structural decoding.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Kind identifies the variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

// Pair is one mapping entry. Mappings keep their entries in document
// order; duplicate keys are allowed, as the source renders them.
type Pair struct {
	Key   string
	Value *Node
}

// Node is a tagged-variant tree value: Null, Scalar, Sequence, or
// Mapping. The zero value and nil both behave as Null.
type Node struct {
	kind   Kind
	scalar string
	items  []*Node
	pairs  []Pair
}

// Null returns the null node.
func Null() *Node { return &Node{kind: KindNull} }

// Scalar returns a scalar string node.
func Scalar(s string) *Node { return &Node{kind: KindScalar, scalar: s} }

// Sequence returns a sequence node holding items in order.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Mapping returns a mapping node holding pairs in order.
func Mapping(pairs ...Pair) *Node {
	return &Node{kind: KindMapping, pairs: pairs}
}

// Kind reports the node's variant. A nil node is Null.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsNull reports whether the node is nil or the null variant.
func (n *Node) IsNull() bool { return n.Kind() == KindNull }

// String returns the scalar value, or "" for non-scalar nodes.
func (n *Node) String() string {
	if n.Kind() != KindScalar {
		return ""
	}
	return n.scalar
}

// Items returns the sequence elements, or nil for non-sequence nodes.
func (n *Node) Items() []*Node {
	if n.Kind() != KindSequence {
		return nil
	}
	return n.items
}

// Pairs returns the mapping entries in document order, or nil for
// non-mapping nodes.
func (n *Node) Pairs() []Pair {
	if n.Kind() != KindMapping {
		return nil
	}
	return n.pairs
}

// Get returns the value of the first direct entry with the given key.
func (n *Node) Get(key string) (*Node, bool) {
	for _, p := range n.Pairs() {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Set appends a mapping entry, replacing the first existing entry with
// the same key if one is present. It is a no-op on non-mapping nodes.
func (n *Node) Set(key string, value *Node) {
	if n.Kind() != KindMapping {
		return
	}
	for i, p := range n.pairs {
		if p.Key == key {
			n.pairs[i].Value = value
			return
		}
	}
	n.pairs = append(n.pairs, Pair{Key: key, Value: value})
}

// Add appends a mapping entry without replacing existing entries with
// the same key. The source repeats keys, and repeated entries must
// survive for pattern collection. No-op on non-mapping nodes.
func (n *Node) Add(key string, value *Node) {
	if n.Kind() != KindMapping {
		return
	}
	n.pairs = append(n.pairs, Pair{Key: key, Value: value})
}

// Append adds elements to a sequence node. It is a no-op on
// non-sequence nodes.
func (n *Node) Append(items ...*Node) {
	if n.Kind() != KindSequence {
		return
	}
	n.items = append(n.items, items...)
}

// Text normalizes a node to its effective scalar value: the scalar
// itself, or the first element of a sequence (the source renders every
// field as a single-element list). Null and mapping nodes yield "".
func (n *Node) Text() string {
	switch n.Kind() {
	case KindScalar:
		return n.scalar
	case KindSequence:
		if len(n.items) > 0 {
			return n.items[0].Text()
		}
	}
	return ""
}

// MarshalJSON renders the node losslessly: null, string, array, or an
// object whose keys appear in document order.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Kind() {
	case KindNull:
		return []byte("null"), nil
	case KindScalar:
		return json.Marshal(n.scalar)
	case KindSequence:
		if n.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(n.items)
	case KindMapping:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, p := range n.pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(p.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			v, err := json.Marshal(p.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown node kind %d", n.kind)
}

// MarshalYAML renders the node as a yaml.Node, preserving mapping order.
func (n *Node) MarshalYAML() (any, error) {
	return n.yamlNode(), nil
}

func (n *Node) yamlNode() *yaml.Node {
	switch n.Kind() {
	case KindScalar:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.scalar}
	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			out.Content = append(out.Content, item.yamlNode())
		}
		return out
	case KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range n.pairs {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
				p.Value.yamlNode(),
			)
		}
		return out
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
