package props

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML document into a property source. Nested mappings
// flatten into dotted keys, sequences into indexed keys:
//
//	server:
//	  port: 8080
//	  hosts: [a, b]
//
// yields server.port=8080, server.hosts[0]=a, server.hosts[1]=b.
func LoadYAML(data []byte) (MapSource, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing yaml properties: %w", err)
	}
	out := MapSource{}
	flatten("", root, out)
	return out, nil
}

// LoadYAMLFile reads and parses a YAML properties file.
func LoadYAMLFile(path string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading yaml properties file: %w", err)
	}
	return LoadYAML(data)
}

func flatten(prefix string, node any, out MapSource) {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			flatten(joinKey(prefix, key), child, out)
		}
	case map[any]any:
		for key, child := range v {
			flatten(joinKey(prefix, fmt.Sprint(key)), child, out)
		}
	case []any:
		for i, child := range v {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
