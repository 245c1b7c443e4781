package registry

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one server as written in the configuration file.
//
//	servers:
//	  - name: DHAKA-FLIX-14
//	    url: http://172.16.50.14/DHAKA-FLIX-14/
//	    categories: [Movies, Series]
type Entry struct {
	Name       string            `yaml:"name"`
	URL        string            `yaml:"url"`
	Categories CategoryList      `yaml:"categories"`
	Headers    map[string]string `yaml:"headers,omitempty"`
}

// CategoryList accepts either a YAML sequence or a comma separated string
// ("Movies, Series").
type CategoryList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CategoryList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*c = SplitCategories(raw)
		return nil
	}

	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*c = list
	return nil
}

// SplitCategories splits a comma separated category string and trims each part.
// Blank parts are dropped.
func SplitCategories(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
