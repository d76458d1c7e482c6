package csv

import (
	"fmt"
	"strings"

	"github.com/nicored/tsdata/timeseries"
	"github.com/pkg/errors"
)

const (
	TypFloat    = "float"
	TypHiLo     = "hilo"
	TypFraction = "fraction"
)

// DecodeFunc decodes the text of a single field. On failure it still returns
// the sentinel value to store, along with the reason.
type DecodeFunc func(field string, ctx *DecodeContext) (timeseries.Value, error)

// decoders is a list of all available field decoders mapped by name
var decoders = map[string]Decoder{}

// Decoder is the field decoder's interface
type Decoder interface {
	Name() string
	Decode(field string, ctx *DecodeContext) (timeseries.Value, error)
}

// DecodeContext gives decoders access to the options of the running parse
type DecodeContext struct {
	Options *Options
}

// Number decodes a numeric component, applying the missing and NaN
// replacement options
func (dc *DecodeContext) Number(s string) (float64, error) {
	o := dc.Options

	if o.ReplaceMissing && strings.TrimSpace(s) == "" {
		return o.ReplaceMissingValue, nil
	}

	f, err := ParseNumber(s)
	if err != nil && o.ReplaceNaN && strings.TrimSpace(s) != "" {
		return o.ReplaceNaNValue, err
	}

	return f, err
}

// AddDecoders adds given decoders to the list
func AddDecoders(list ...Decoder) error {
	for _, d := range list {
		name := strings.TrimSpace(d.Name())

		if name == "" {
			return errors.New("decoder's name cannot be empty")
		}

		if _, ok := decoders[name]; ok {
			return fmt.Errorf("decoder with name '%s' already exists", name)
		}

		decoders[name] = d
	}

	return nil
}

// FieldDecoder implements the Decoder interface around a DecodeFunc
type FieldDecoder struct {
	name   string
	decode DecodeFunc
}

// NewFieldDecoder creates a decoder which can be registered with AddDecoders
func NewFieldDecoder(name string, decode DecodeFunc) *FieldDecoder {
	return &FieldDecoder{name: name, decode: decode}
}

// Name returns the name of the decoder
func (fd *FieldDecoder) Name() string {
	return fd.name
}

// Decode runs the decoder
func (fd *FieldDecoder) Decode(field string, ctx *DecodeContext) (timeseries.Value, error) {
	return fd.decode(field, ctx)
}
