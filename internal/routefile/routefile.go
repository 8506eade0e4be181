// Package routefile loads route tables from YAML files. It backs the
// wayfind CLI, letting route tables be inspected and matched against
// without writing Go.
package routefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wayfind-go/wayfind/pkg/router"
)

// Record is the YAML form of one route entry.
type Record struct {
	Path      string         `yaml:"path"`
	Name      string         `yaml:"name,omitempty"`
	Component string         `yaml:"component,omitempty"`
	Redirect  string         `yaml:"redirect,omitempty"`
	Alias     []string       `yaml:"alias,omitempty"`
	Meta      map[string]any `yaml:"meta,omitempty"`
	Children  []Record       `yaml:"children,omitempty"`
}

// File is the top-level YAML document.
type File struct {
	Routes []Record `yaml:"routes"`
}

// Load reads a YAML route file and converts it to route records. The
// records are not compiled; pass them to router.New or compile them via
// the CLI to surface pattern errors.
func Load(path string) ([]*router.RouteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	return Parse(data)
}

// Parse converts YAML bytes to route records.
func Parse(data []byte) ([]*router.RouteRecord, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse route file: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("route file has no routes")
	}
	return convert(file.Routes)
}

func convert(in []Record) ([]*router.RouteRecord, error) {
	out := make([]*router.RouteRecord, 0, len(in))
	for _, rec := range in {
		if rec.Path == "" {
			return nil, fmt.Errorf("route entry %q is missing a path", rec.Name)
		}
		children, err := convert(rec.Children)
		if err != nil {
			return nil, err
		}
		out = append(out, &router.RouteRecord{
			Path:      rec.Path,
			Name:      rec.Name,
			Component: rec.Component,
			Redirect:  rec.Redirect,
			Alias:     rec.Alias,
			Meta:      router.Meta(rec.Meta),
			Children:  children,
		})
	}
	return out, nil
}
