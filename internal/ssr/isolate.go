package ssr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// isolate is a single-use goja runtime. Values created in it must not
// outlive close or be passed to another isolate.
type isolate struct {
	vm    *goja.Runtime
	done  chan struct{}
	toStr goja.Callable
}

// toStringProgram evaluates to a function converting its argument with a
// template literal, which is JS ToString.
var toStringProgram = goja.MustCompile("to-string.js", "(function (v) { return `${v}`; })", false)

func newIsolate(ctx context.Context, cfg PlatformConfig) *isolate {
	vm := goja.New()
	if cfg.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(cfg.MaxCallStackSize)
	}

	iso := &isolate{
		vm:   vm,
		done: make(chan struct{}),
	}
	iso.setupGlobals(cfg.Logger)

	if ctx.Done() != nil {
		go iso.watch(ctx)
	}
	return iso
}

// watch interrupts the VM once ctx is done. goja offers no cooperative
// cancellation, so this is the only way to stop a running script.
func (i *isolate) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		i.vm.Interrupt(ctx.Err())
	case <-i.done:
	}
}

func (i *isolate) close() {
	close(i.done)
}

// run executes the compiled bundle and returns its completion value.
func (i *isolate) run(ctx context.Context, prog *goja.Program) (goja.Value, error) {
	v, err := i.vm.RunProgram(prog)
	if err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			return nil, interrupted(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return v, nil
}

// call invokes fn as a free function with a single argument.
func (i *isolate) call(fn goja.Callable, arg goja.Value) (out string, err error) {
	err = i.guard(func() error {
		v, err := fn(goja.Undefined(), arg)
		if err != nil {
			return err
		}
		out, err = i.toString(v)
		return err
	})
	return out, err
}

// toString applies JS ToString to v. Symbols, and objects whose toString
// throws or returns a symbol, yield the TypeError or exception raised.
func (i *isolate) toString(v goja.Value) (string, error) {
	if i.toStr == nil {
		fn, err := i.vm.RunProgram(toStringProgram)
		if err != nil {
			return "", err
		}
		i.toStr, _ = goja.AssertFunction(fn)
	}
	s, err := i.toStr(goja.Undefined(), v)
	if err != nil {
		return "", err
	}
	return stringify(s), nil
}

// guard converts JS exceptions raised as panics (getters, toString) into
// errors.
func (i *isolate) guard(f func() error) (err error) {
	defer func() {
		if x := recover(); x != nil {
			switch e := x.(type) {
			case *goja.Exception:
				err = e
			case *goja.InterruptedError:
				err = e
			case *goja.StackOverflowError:
				err = e
			default:
				panic(x)
			}
		}
	}()
	return f()
}

// stringify converts v to a Go string and replaces unpaired surrogates.
func stringify(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	return strings.ToValidUTF8(v.String(), "\uFFFD")
}

func (i *isolate) setupGlobals(logger *zap.Logger) {
	console := i.vm.NewObject()
	named := logger.Named("ssr.console")
	console.Set("log", makeConsoleFunc(named.Info))
	console.Set("info", makeConsoleFunc(named.Info))
	console.Set("debug", makeConsoleFunc(named.Debug))
	console.Set("warn", makeConsoleFunc(named.Warn))
	console.Set("error", makeConsoleFunc(named.Error))
	i.vm.Set("console", console)

	// Timers never fire during a synchronous render.
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	i.vm.Set("setTimeout", noop)
	i.vm.Set("setInterval", noop)
	i.vm.Set("clearTimeout", noop)
	i.vm.Set("clearInterval", noop)
}

func makeConsoleFunc(log func(string, ...zap.Field)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, stringify(arg))
		}
		log(strings.Join(parts, " "))
		return goja.Undefined()
	}
}
