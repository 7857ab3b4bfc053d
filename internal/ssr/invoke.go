package ssr

import (
	"context"
	"errors"
	"strings"

	"github.com/dop251/goja"
	"github.com/hashicorp/go-multierror"
)

// Params is the optional string passed to every render function.
type Params struct {
	value string
	set   bool
}

// NoParams passes undefined to render functions.
var NoParams = Params{}

// StringParams passes s verbatim to render functions.
func StringParams(s string) Params {
	return Params{value: s, set: true}
}

// Value returns the parameter string and whether one was supplied.
func (p Params) Value() (string, bool) {
	return p.value, p.set
}

func (p Params) toValue(vm *goja.Runtime) goja.Value {
	if !p.set {
		return goja.Undefined()
	}
	return vm.ToValue(p.value)
}

// invokeAll calls every export in order and concatenates the results.
// A failing export does not stop the others; all failures are returned as
// one *multierror.Error next to the output of the exports that succeeded.
func invokeAll(ctx context.Context, iso *isolate, exports ExportMap, params Params) (string, error) {
	arg := params.toValue(iso.vm)

	var (
		sb     strings.Builder
		result *multierror.Error
	)
	for _, exp := range exports.entries {
		if err := ctx.Err(); err != nil {
			return sb.String(), interrupted(err)
		}

		out, err := iso.call(exp.Fn, arg)
		if err != nil {
			var ie *goja.InterruptedError
			if errors.As(err, &ie) {
				return sb.String(), interrupted(ctx.Err())
			}
			result = multierror.Append(result, &ExportError{Name: exp.Name, Err: err})
			continue
		}
		sb.WriteString(out)
	}

	return sb.String(), result.ErrorOrNil()
}
