// Package mmfile loads container files through a read-only memory mapping.
package mmfile

import "fmt"

// ReadFile maps the file at path, copies its contents into a buffer owned by
// the caller and releases the mapping on every path.
func ReadFile(path string) (data []byte, err error) {
	mapped, cleanup, err := Map(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("mmfile: unmap %s: %w", path, cerr)
		}
	}()
	data = make([]byte, len(mapped))
	copy(data, mapped)
	return data, nil
}
