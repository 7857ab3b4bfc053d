package ssr

import "github.com/dop251/goja"

// Export is a callable top-level binding of the bundle's result object.
type Export struct {
	Name string
	Fn   goja.Callable
}

// ExportMap is the ordered set of callable exports of one isolate. It is
// only valid until that isolate is closed.
type ExportMap struct {
	entries []Export
}

// Len returns the number of callable exports.
func (m ExportMap) Len() int { return len(m.entries) }

// Names returns the export names in invocation order.
func (m ExportMap) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name
	}
	return names
}

// reflectExports enumerates the own enumerable properties of result and
// keeps the callable ones, preserving property order.
func reflectExports(vm *goja.Runtime, result goja.Value) (ExportMap, error) {
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return ExportMap{}, ErrNoExports
	}

	obj := result.ToObject(vm)
	keys := obj.Keys()

	m := ExportMap{entries: make([]Export, 0, len(keys))}
	for _, name := range keys {
		fn, ok := goja.AssertFunction(obj.Get(name))
		if !ok {
			continue
		}
		m.entries = append(m.entries, Export{Name: name, Fn: fn})
	}
	return m, nil
}
