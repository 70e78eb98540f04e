// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package macro

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dict is an ordered list of settings as authored, e.g. in a project file or an SDK
// description. Keys may carry a condition suffix such as `OTHER_CFLAGS[arch=arm64]`.
type Dict []DictEntry

type DictEntry struct {
	Key   string
	Value string
}

// DictOf builds a Dict from alternating keys and values.
func DictOf(keysAndValues ...string) Dict {
	if len(keysAndValues)%2 != 0 {
		panic("DictOf: odd number of arguments")
	}
	d := make(Dict, 0, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		d = append(d, DictEntry{Key: keysAndValues[i], Value: keysAndValues[i+1]})
	}
	return d
}

// Get returns the value of the last entry with the given key.
func (d Dict) Get(key string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Key == key {
			return d[i].Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key or appends a new entry.
func (d *Dict) Set(key, value string) {
	for i := range *d {
		if (*d)[i].Key == key {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, DictEntry{Key: key, Value: value})
}

func (d Dict) Keys() []string {
	keys := make([]string, len(d))
	for i, e := range d {
		keys[i] = e.Key
	}
	return keys
}

// SplitKey separates a setting key into the macro name and its condition suffix.
func SplitKey(key string) (name, conditions string) {
	if i := strings.IndexByte(key, '['); i >= 0 {
		return key[:i], key[i:]
	}
	return key, ""
}

// PushTo pushes every entry onto t in order, declaring unknown names in ns as user-defined.
// Entries with malformed conditions are skipped and reported in the returned error.
func (d Dict) PushTo(t *Table, ns *Namespace) error {
	var errs []error
	for _, e := range d {
		name, suffix := SplitKey(e.Key)
		conditions, err := ParseConditions(suffix)
		if err != nil {
			errs = append(errs, fmt.Errorf("setting %q: %w", e.Key, err))
			continue
		}
		t.Push(ns.LookupOrDeclare(name), ns.Parse(e.Value), conditions)
	}
	return errors.Join(errs...)
}

// Table returns a new table holding the entries of d.
func (d Dict) Table(ns *Namespace) (*Table, error) {
	t := NewTable()
	err := d.PushTo(t, ns)
	return t, err
}

// UnmarshalYAML reads a mapping while keeping its key order. Sequence values are joined into
// a list value and booleans are spelled YES or NO.
func (d *Dict) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: build settings must be a mapping", node.Line)
	}
	out := make(Dict, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		value, err := settingValue(valueNode)
		if err != nil {
			return fmt.Errorf("setting %q: %w", keyNode.Value, err)
		}
		out = append(out, DictEntry{Key: keyNode.Value, Value: value})
	}
	*d = out
	return nil
}

// MarshalYAML writes d as a mapping in entry order.
func (d Dict) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range d {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value})
	}
	return node, nil
}

func settingValue(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return "", err
			}
			return FormatBool(b), nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		words := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("line %d: list items must be scalars", item.Line)
			}
			words = append(words, item.Value)
		}
		return JoinList(words), nil
	default:
		return "", fmt.Errorf("line %d: unsupported value", node.Line)
	}
}
