// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Linhanmic/tester-template-engine/native"
)

// DecodeYAML decodes a YAML document. Mappings become *native.Record values
// with the keys in the same order as in the source and sequences become
// native.List values. An empty document decodes to an empty record.
func DecodeYAML(src io.Reader) (interface{}, error) {
	var doc yaml.Node
	err := yaml.NewDecoder(src).Decode(&doc)
	if err == io.EOF {
		return &native.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	return yamlValue(&doc)
}

// yamlValue returns the template value of the YAML node n.
func yamlValue(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &native.Record{}, nil
		}
		return yamlValue(n.Content[0])
	case yaml.MappingNode:
		r := &native.Record{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", key.Line)
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			r.Set(key.Value, v)
		}
		return r, nil
	case yaml.SequenceNode:
		list := make(native.List, len(n.Content))
		for i, e := range n.Content {
			v, err := yamlValue(e)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return "", nil
		case "!!int":
			var i int
			if err := n.Decode(&i); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return i, nil
		case "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return f, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return b, nil
		}
		return n.Value, nil
	}
	return nil, fmt.Errorf("line %d: unexpected YAML node", n.Line)
}
