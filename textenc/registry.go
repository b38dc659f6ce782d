package textenc

import (
	"fmt"
	"sort"
	"strings"
)

// Registry resolves built-in codecs plus custom tables registered by name.
// The zero value is ready to use. A Registry is not safe for concurrent
// registration.
type Registry struct {
	tables map[string]Codec
}

// Register adds a custom codec. Tables are addressable both by their bare
// name and by "table:<name>".
func (r *Registry) Register(c Codec) error {
	if c == nil {
		return fmt.Errorf("textenc: nil codec")
	}
	if r.tables == nil {
		r.tables = make(map[string]Codec)
	}
	name := Normalize(strings.TrimPrefix(c.Name(), "table:"))
	if _, ok := builtins[name]; ok {
		return fmt.Errorf("textenc: %q shadows a built-in encoding", name)
	}
	if _, ok := r.tables[name]; ok {
		return fmt.Errorf("textenc: %q already registered", name)
	}
	r.tables[name] = c
	return nil
}

// Lookup resolves name against the registered tables, then the built-ins.
func (r *Registry) Lookup(name string) (Codec, error) {
	if r != nil && r.tables != nil {
		n := Normalize(strings.TrimPrefix(Normalize(name), "table:"))
		if c, ok := r.tables[n]; ok {
			return c, nil
		}
	}
	return Lookup(name)
}

// Tables lists the names of registered custom codecs.
func (r *Registry) Tables() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.tables))
	for n := range r.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
