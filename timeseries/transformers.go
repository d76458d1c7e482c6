package timeseries

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robertkrimen/otto"
	"github.com/sirupsen/logrus"
)

// BuildFunc creates the transform function for the given arguments
type BuildFunc func(args FuncArgs) (TransformFunc, error)

// transformers is a list of all available transformers mapped by name
var transformers = map[string]Transformer{}

// Transformer is a named, configurable transform that can be registered and
// looked up by name, e.g. from a configuration file
type Transformer interface {
	Name() string
	ArgDef() ArgDef
	Build(args FuncArgs) (TransformFunc, error)
}

// AddTransformers adds the given transformers to the registry
func AddTransformers(list ...Transformer) error {
	for _, t := range list {
		name := strings.TrimSpace(t.Name())

		if name == "" {
			return errors.New("transformer's name cannot be empty")
		}

		if _, ok := transformers[name]; ok {
			return fmt.Errorf("transformer with name '%s' already exists", name)
		}

		transformers[name] = t
	}

	return nil
}

// GetTransformer returns the registered transformer with the given name
func GetTransformer(name string) (Transformer, bool) {
	t, ok := transformers[name]
	return t, ok
}

// NamedTransform builds the registered transformer called name with args
func NamedTransform(name string, args FuncArgs) (TransformFunc, error) {
	t, ok := transformers[name]
	if !ok {
		return nil, fmt.Errorf("transformer '%s' does not exist", name)
	}

	if err := validateArgs(name, t.ArgDef(), args); err != nil {
		return nil, err
	}

	fn, err := t.Build(args)
	if err != nil {
		return nil, errors.Wrapf(err, "error building transformer '%s'", name)
	}

	return fn, nil
}

// AddNamedTransform builds the registered transformer called name and adds it
// to the given columns, see AddTransform
func (d *Data) AddNamedTransform(name string, args FuncArgs, indices ...int) error {
	fn, err := NamedTransform(name, args)
	if err != nil {
		return err
	}

	return d.AddTransform(fn, indices...)
}

// Builtin implements the Transformer interface for transforms written in Go
type Builtin struct {
	name  string
	build BuildFunc
	args  ArgDef
}

// NewBuiltin creates a Go transformer
func NewBuiltin(name string, args ArgDef, build BuildFunc) *Builtin {
	return &Builtin{name: name, build: build, args: args}
}

// Name returns the name of the transformer
func (b *Builtin) Name() string {
	return b.name
}

// ArgDef returns the arguments the transformer requires
func (b *Builtin) ArgDef() ArgDef {
	return b.args
}

// Build creates the transform function
func (b *Builtin) Build(args FuncArgs) (TransformFunc, error) {
	return b.build(args)
}

// JSTransformer is a transformer running a javascript script for every value.
//
// The script reads the variables 'value' and 'row' plus any argument declared
// in its 'args' object, and writes the mapped value into 'output'. Dates are
// passed as epoch milliseconds, pairs as two-element arrays.
type JSTransformer struct {
	name   string
	args   ArgDef
	script string
}

// NewJSTransformer compiles a javascript transformer from its source
func NewJSTransformer(name string, src string) (*JSTransformer, error) {
	vm := otto.New()

	script, err := vm.Compile(name, src)
	if err != nil {
		return nil, err
	}

	// running the script without checking for errors, all we want is the required args list
	vm.Run(script)

	reqVals, err := vm.Get("args")
	if err != nil {
		return nil, err
	}

	reqValsI, err := reqVals.Export()
	if err != nil {
		return nil, err
	}

	jt := &JSTransformer{
		name:   name,
		args:   ArgDef{},
		script: script.String(),
	}

	if reqValsI == nil {
		return jt, nil
	}

	args, ok := reqValsI.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("js error: 'args' must be an object in '%s'", name)
	}

	for arg, typ := range args {
		switch typ {
		case "number":
			jt.args[arg] = typFloat
		case "string":
			jt.args[arg] = typString
		default:
			return nil, fmt.Errorf("type '%s' is not supported in '%s'", typ, name)
		}
	}

	return jt, nil
}

// Name returns the name of the transformer
func (jt *JSTransformer) Name() string {
	return jt.name
}

// ArgDef returns the arguments declared by the script
func (jt *JSTransformer) ArgDef() ArgDef {
	return jt.args
}

// Build creates a transform function bound to a dedicated javascript VM
func (jt *JSTransformer) Build(args FuncArgs) (TransformFunc, error) {
	vm := otto.New()

	for arg, typ := range jt.args {
		var (
			val interface{}
			err error
		)

		switch typ {
		case typFloat:
			val, err = argFloat(args, arg)
		default:
			val, err = argString(args, arg)
		}
		if err != nil {
			return nil, err
		}

		if err = vm.Set(arg, val); err != nil {
			return nil, err
		}
	}

	script, err := vm.Compile(jt.name, jt.script)
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("transformer", jt.name)

	return func(v Value, row int, column []Value) Value {
		vm.Set("value", toJS(v))
		vm.Set("row", row)
		vm.Set("output", otto.UndefinedValue())

		if _, err := vm.Run(script); err != nil {
			log.WithError(err).Debugf("script failed on row %d", row)
			return MapNumeric(v, func(float64) float64 { return math.NaN() })
		}

		out, err := vm.Get("output")
		if err != nil || out.IsUndefined() {
			return v
		}

		exported, err := out.Export()
		if err != nil {
			return v
		}

		return fromJS(v, exported)
	}, nil
}

func toJS(v Value) interface{} {
	switch val := v.(type) {
	case time.Time:
		return float64(val.UnixMilli())
	case Pair:
		return []interface{}{val[0], val[1]}
	case Group:
		out := make([]interface{}, len(val))
		for i, g := range val {
			out[i] = toJS(g)
		}
		return out
	}

	return v
}

// fromJS converts a value exported from the VM back, using the input value
// as a hint for its shape
func fromJS(in Value, out interface{}) Value {
	if f, ok := jsNumber(out); ok {
		if _, isDate := in.(time.Time); isDate {
			return time.UnixMilli(int64(f)).UTC()
		}
		return f
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Slice {
		return in
	}

	if rv.Len() == 2 {
		lo, okLo := jsNumber(rv.Index(0).Interface())
		hi, okHi := jsNumber(rv.Index(1).Interface())
		if okLo && okHi {
			return Pair{lo, hi}
		}
	}

	group := make(Group, rv.Len())
	for i := range group {
		var hint Value
		if g, ok := in.(Group); ok && i < len(g) {
			hint = g[i]
		}
		group[i] = fromJS(hint, rv.Index(i).Interface())
	}

	return group
}

func jsNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	}

	return 0, false
}
