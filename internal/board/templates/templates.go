// Package templates holds the starter layouts a new board can be created from.
package templates

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default is used when a board is created without naming a template.
const Default = "basic"

//go:embed *.yaml
var files embed.FS

type ColumnSpec struct {
	Title string `yaml:"title" json:"title"`
	Color string `yaml:"color" json:"color"`
}

type LabelSpec struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

type Template struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	Columns     []ColumnSpec `yaml:"columns" json:"columns"`
	Labels      []LabelSpec  `yaml:"labels" json:"labels"`
}

// Load parses every embedded template, keyed by name.
func Load() (map[string]*Template, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Template, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		raw, err := files.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}
		var tpl Template
		if err := yaml.Unmarshal(raw, &tpl); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", entry.Name(), err)
		}
		if tpl.Name == "" {
			tpl.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		if len(tpl.Columns) == 0 {
			return nil, fmt.Errorf("template %s has no columns", tpl.Name)
		}
		out[tpl.Name] = &tpl
	}
	return out, nil
}

// Sorted returns the templates ordered by name.
func Sorted(all map[string]*Template) []*Template {
	list := make([]*Template, 0, len(all))
	for _, tpl := range all {
		list = append(list, tpl)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
