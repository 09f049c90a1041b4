package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// replaceInYAML replaces placeholder only inside the scalar values addressed
// by keys (dotted paths such as "image.tag"). The document is re-encoded, so
// indentation is normalised to two spaces; comments are kept.
func replaceInYAML(data []byte, keys []string, placeholder, replacement string) ([]byte, int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parse: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, 0, errors.New("empty yaml document")
	}

	count := 0
	for _, key := range keys {
		node := lookup(doc.Content[0], strings.Split(key, "."))
		if node == nil || node.Kind != yaml.ScalarNode {
			continue
		}
		n := strings.Count(node.Value, placeholder)
		if n == 0 {
			continue
		}
		node.Value = strings.ReplaceAll(node.Value, placeholder, replacement)
		// Versions like 1.10 must stay strings.
		node.Tag = "!!str"
		count += n
	}
	if count == 0 {
		return data, 0, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, 0, fmt.Errorf("encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, 0, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), count, nil
}

func lookup(node *yaml.Node, path []string) *yaml.Node {
	for _, part := range path {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == part {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}
