// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tree

import (
	"regexp"
	"strconv"
)

// FindFirst walks the tree depth-first in pre-order and returns the
// value of the first mapping entry whose key equals key exactly.
// Mapping entries are visited in document order and sequences by index;
// non-matching values are descended into regardless of type. The second
// return is false when no entry matches anywhere in the tree.
func FindFirst(n *Node, key string) (*Node, bool) {
	switch n.Kind() {
	case KindMapping:
		for _, p := range n.Pairs() {
			if p.Key == key {
				return p.Value, true
			}
			if v, ok := FindFirst(p.Value, key); ok {
				return v, true
			}
		}
	case KindSequence:
		for _, item := range n.Items() {
			if v, ok := FindFirst(item, key); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// CollectByPattern walks the tree depth-first and returns every mapping
// entry whose key matches keyword case-insensitively (regexp semantics,
// unanchored). Matched values are still descended into, so nested
// occurrences under a matching key are collected too. The result is in
// depth-first order; nil when nothing matches or the pattern is invalid.
func CollectByPattern(n *Node, keyword string) []Pair {
	re, err := regexp.Compile("(?i)" + keyword)
	if err != nil {
		return nil
	}
	return Collect(n, re)
}

// Collect is CollectByPattern with a pre-compiled key pattern.
func Collect(n *Node, re *regexp.Regexp) []Pair {
	var out []Pair
	collect(n, re, &out)
	return out
}

func collect(n *Node, re *regexp.Regexp, out *[]Pair) {
	switch n.Kind() {
	case KindMapping:
		for _, p := range n.Pairs() {
			if re.MatchString(p.Key) {
				*out = append(*out, p)
			}
			collect(p.Value, re, out)
		}
	case KindSequence:
		for _, item := range n.Items() {
			collect(item, re, out)
		}
	}
}

// SafeGet descends the tree one path segment at a time: mapping nodes
// are indexed by key, sequence nodes by a decimal index segment. It
// returns false without panicking when a segment is missing or the
// current node is not indexable for that segment.
func SafeGet(n *Node, path ...string) (*Node, bool) {
	cur := n
	for _, seg := range path {
		switch cur.Kind() {
		case KindMapping:
			v, ok := cur.Get(seg)
			if !ok {
				return nil, false
			}
			cur = v
		case KindSequence:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.Items()) {
				return nil, false
			}
			cur = cur.Items()[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
