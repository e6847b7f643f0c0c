/*
Copyright 2025 The Backup Config Synchronizer contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package synchronizer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a YAML mapping manipulated without a fixed schema. Operating
// on the node tree keeps unknown fields, their order and their comments
// intact through the round-trip.
type Document struct {
	root *yaml.Node
}

// ParseDocument decodes a YAML mapping. Empty input yields an empty
// document; any other non-mapping root is rejected.
func ParseDocument(raw string) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		return nil, fmt.Errorf("failed to parse configuration document: %w", err)
	}

	if node.Kind == 0 || len(node.Content) == 0 {
		return &Document{root: newMappingNode()}, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return &Document{root: newMappingNode()}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("configuration document root must be a mapping, got %s", root.Tag)
	}

	// A root parsed from "{...}" carries flow style; output is block style.
	root.Style = 0

	return &Document{root: root}, nil
}

// EnsureList adds an empty list under key if the key is absent. It reports
// whether the list had to be created.
func (d *Document) EnsureList(key string) bool {
	if d.value(key) != nil {
		return false
	}

	d.root.Content = append(d.root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"},
	)
	return true
}

// AppendUnique appends each item that is not already in the list under key,
// preserving existing order and appending new items in input order. Repeated
// input items are appended once. It returns the items that were added.
func (d *Document) AppendUnique(key string, items []string) ([]string, error) {
	list := d.value(key)
	if list == nil {
		return nil, fmt.Errorf("key %q does not exist in the document", key)
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("key %q is not a list (got %s)", key, list.Tag)
	}

	seen := make(map[string]struct{}, len(list.Content))
	for _, entry := range list.Content {
		seen[entry.Value] = struct{}{}
	}

	var added []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}

		list.Content = append(list.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		added = append(added, item)
	}

	if len(list.Content) > 0 {
		// A list parsed from "[]" carries flow style; entries are emitted
		// in block style.
		list.Style = 0
	}

	return added, nil
}

// Serialize encodes the document as block-style YAML with two-space indent.
func (d *Document) Serialize() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(d.root); err != nil {
		return "", fmt.Errorf("failed to serialize configuration document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to serialize configuration document: %w", err)
	}

	return buf.String(), nil
}

// value returns the value node for key, or nil if the key is absent.
func (d *Document) value(key string) *yaml.Node {
	content := d.root.Content
	for i := 0; i+1 < len(content); i += 2 {
		if content[i].Value == key {
			return content[i+1]
		}
	}
	return nil
}

func newMappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}
