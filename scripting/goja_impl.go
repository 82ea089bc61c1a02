package scripting

import (
	"context"

	"github.com/dop251/goja"
)

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// RegisterViewer installs the automation surface: read-only accessor
// properties for the viewport state, global functions for every
// operation, and an 'app' object for UI interaction.
func (e *GojaEngine) RegisterViewer(v Viewer) error {
	appObj := e.vm.NewObject()
	err := appObj.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		v.Alert(msg)
		return goja.Undefined()
	})
	if err != nil {
		return err
	}
	e.vm.Set("app", appObj)

	global := e.vm.GlobalObject()
	accessors := map[string]func() goja.Value{
		"page":      func() goja.Value { return e.vm.ToValue(v.Page()) },
		"pageCount": func() goja.Value { return e.vm.ToValue(v.PageCount()) },
		"zoom":      func() goja.Value { return e.vm.ToValue(v.Zoom()) },
	}
	for name, get := range accessors {
		get := get
		err := global.DefineAccessorProperty(name,
			e.vm.ToValue(func(call goja.FunctionCall) goja.Value { return get() }),
			nil,
			goja.FLAG_FALSE, // not configurable
			goja.FLAG_TRUE,  // enumerable
		)
		if err != nil {
			return err
		}
	}

	e.vm.Set("goToPage", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.vm.ToValue(false)
		}
		return e.vm.ToValue(v.GoToPage(int(call.Arguments[0].ToInteger())))
	})
	e.vm.Set("nextPage", func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(v.NextPage())
	})
	e.vm.Set("prevPage", func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(v.PrevPage())
	})

	e.vm.Set("setZoom", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.vm.ToValue(v.Zoom())
		}
		return e.vm.ToValue(v.SetZoom(call.Arguments[0].ToFloat()))
	})
	e.vm.Set("zoomIn", func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(v.ZoomIn())
	})
	e.vm.Set("zoomOut", func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(v.ZoomOut())
	})
	e.vm.Set("resetZoom", func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(v.ResetZoom())
	})

	e.vm.Set("select", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 4 {
			return e.vm.ToValue(false)
		}
		return e.vm.ToValue(v.Select(
			call.Arguments[0].ToFloat(),
			call.Arguments[1].ToFloat(),
			call.Arguments[2].ToFloat(),
			call.Arguments[3].ToFloat(),
		))
	})
	e.vm.Set("clearSelection", func(call goja.FunctionCall) goja.Value {
		v.ClearSelection()
		return goja.Undefined()
	})

	e.vm.Set("extract", func(call goja.FunctionCall) goja.Value {
		format := "png"
		if len(call.Arguments) > 0 {
			format = call.Arguments[0].String()
		}
		data, err := v.Extract(format)
		if err != nil {
			panic(e.vm.NewGoError(err))
		}
		return e.vm.ToValue(e.vm.NewArrayBuffer(data))
	})
	e.vm.Set("download", func(call goja.FunctionCall) goja.Value {
		format := "png"
		if len(call.Arguments) > 0 {
			format = call.Arguments[0].String()
		}
		name, err := v.Download(format)
		if err != nil {
			panic(e.vm.NewGoError(err))
		}
		return e.vm.ToValue(name)
	})
	e.vm.Set("print", func(call goja.FunctionCall) goja.Value {
		if err := v.Print(); err != nil {
			panic(e.vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	e.vm.Set("submitPassphrase", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.vm.ToValue(false)
		}
		return e.vm.ToValue(v.SubmitPassphrase(call.Arguments[0].String()) == nil)
	})
	e.vm.Set("cancelPassphrase", func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(v.CancelPassphrase() == nil)
	})

	return nil
}
