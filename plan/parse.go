// SPDX-License-Identifier: EPL-2.0

package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// document accepts either a bare keyframe array or {"keyframes": [...]}.
type document struct {
	Keyframes []Record `json:"keyframes" yaml:"keyframes"`
}

// ParseJSON decodes keyframe records from JSON. A surrounding Markdown code
// fence, as language models tend to emit, is ignored.
func ParseJSON(data []byte) ([]Record, error) {
	data = stripFence(data)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
		}
		return doc.Keyframes, nil
	}

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}

	return records, nil
}

// ParseYAML decodes keyframe records from YAML.
func ParseYAML(data []byte) ([]Record, error) {
	data = stripFence(data)

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.MappingNode {
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
		}
		return doc.Keyframes, nil
	}

	var records []Record
	if err := node.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}

	return records, nil
}

// Decode reads records from r. format is "json", "yaml" or "yml".
func Decode(r io.Reader, format string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return ParseJSON(data)
	case "yaml", "yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// stripFence removes a leading ``` line (with optional language tag) and a
// trailing ``` line.
func stripFence(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return data
	}

	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return []byte(s)
}
