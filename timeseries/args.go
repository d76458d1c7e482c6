package timeseries

import (
	"fmt"
	"reflect"
	"strconv"
)

// FuncArgs maps argument values by their name and is used when building a
// transform from a Transformer
type FuncArgs map[string]interface{}

// ArgDef maps the argument name to its expected type
type ArgDef map[string]reflect.Type

var (
	typFloat  = reflect.TypeOf(float64(0))
	typString = reflect.TypeOf("")
)

// validateArgs checks that every declared argument is provided and that no
// undeclared argument is
func validateArgs(name string, def ArgDef, args FuncArgs) error {
	for arg := range args {
		if _, ok := def[arg]; !ok {
			return fmt.Errorf("transformer '%s' does not take argument '%s'", name, arg)
		}
	}

	for arg := range def {
		if _, ok := args[arg]; !ok {
			return fmt.Errorf("transformer '%s' requires argument '%s'", name, arg)
		}
	}

	return nil
}

func argFloat(args FuncArgs, argName string) (float64, error) {
	vI, ok := args[argName]
	if !ok {
		return 0, fmt.Errorf("'%s' argument not provided", argName)
	}

	switch v := vI.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' must be a number", argName)
		}
		return f, nil
	}

	return 0, fmt.Errorf("'%s' must be a number", argName)
}

func argString(args FuncArgs, argName string) (string, error) {
	vI, ok := args[argName]
	if !ok {
		return "", fmt.Errorf("'%s' argument not provided", argName)
	}

	switch v := vI.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}

	return fmt.Sprint(vI), nil
}
