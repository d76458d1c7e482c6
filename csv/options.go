package csv

import (
	"regexp"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	// BlankLinePattern matches lines made of whitespace only
	BlankLinePattern = `^(\s*)$`

	// CommentPattern matches trailing comments introduced by '#' or '//'
	CommentPattern = `\s*(#|//).*$`
)

// Options is the parsing configuration. An instance is cloned by New and
// never changes afterwards.
type Options struct {
	ColumnSeparator string `yaml:"columnSeparator"`
	RowSeparator    string `yaml:"rowSeparator"`

	// DefaultType is the name of the decoder used for plain fields
	DefaultType string `yaml:"defaultType"`

	CustomBars          bool   `yaml:"customBars"`
	CustomBarsSeparator string `yaml:"customBarsSeparator"`
	ErrorBars           bool   `yaml:"errorBars"`
	Fractions           bool   `yaml:"fractions"`
	FractionSeparator   string `yaml:"fractionSeparator"`

	SkipBlankLines   bool   `yaml:"skipBlankLines"`
	BlankLinePattern string `yaml:"blankLinePattern"`
	StripComments    bool   `yaml:"stripComments"`
	CommentPattern   string `yaml:"commentPattern"`

	// ReplaceMissing substitutes ReplaceMissingValue for empty numeric text
	ReplaceMissing      bool    `yaml:"replaceMissing"`
	ReplaceMissingValue float64 `yaml:"replaceMissingValue"`

	// ReplaceNaN substitutes ReplaceNaNValue for non-empty numeric text that
	// does not decode
	ReplaceNaN      bool    `yaml:"replaceNaN"`
	ReplaceNaNValue float64 `yaml:"replaceNaNValue"`

	// PadRows pads rows shorter than the widest row with PadRowsValue
	PadRows      bool    `yaml:"padRows"`
	PadRowsValue float64 `yaml:"padRowsValue"`

	// Labels, when set, are used instead of a header line
	Labels []string `yaml:"labels"`

	// Strict collects a DecodeError for every cell that failed to decode.
	// Decoded values are the same as in lenient mode.
	Strict bool `yaml:"strict"`

	Logger logrus.FieldLogger `yaml:"-"`
}

var defaultOptions = Options{
	ColumnSeparator:     ",",
	RowSeparator:        "\n",
	DefaultType:         TypFloat,
	CustomBars:          false,
	CustomBarsSeparator: ";",
	ErrorBars:           false,
	Fractions:           false,
	FractionSeparator:   "/",
	SkipBlankLines:      true,
	BlankLinePattern:    BlankLinePattern,
	StripComments:       true,
	CommentPattern:      CommentPattern,
}

// DefaultOptions returns a fresh copy of the default options
func DefaultOptions() *Options {
	return defaultOptions.Clone()
}

// UnmarshalOptions decodes YAML options on top of the defaults
func UnmarshalOptions(content []byte) (*Options, error) {
	o := DefaultOptions()
	if err := yaml.Unmarshal(content, o); err != nil {
		return nil, errors.Wrap(err, "invalid csv options")
	}

	return o, nil
}

// UnmarshalYAML also accepts customBarsEnabled, errorBarsEnabled and
// fractionsEnabled for the matching flags.
func (o *Options) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Options
	if err := unmarshal((*plain)(o)); err != nil {
		return err
	}

	var aliases struct {
		CustomBars *bool `yaml:"customBarsEnabled"`
		ErrorBars  *bool `yaml:"errorBarsEnabled"`
		Fractions  *bool `yaml:"fractionsEnabled"`
	}
	if err := unmarshal(&aliases); err != nil {
		return err
	}

	if aliases.CustomBars != nil {
		o.CustomBars = *aliases.CustomBars
	}
	if aliases.ErrorBars != nil {
		o.ErrorBars = *aliases.ErrorBars
	}
	if aliases.Fractions != nil {
		o.Fractions = *aliases.Fractions
	}

	return nil
}

// Clone returns a copy of the options that shares no slices with o
func (o *Options) Clone() *Options {
	c := *o
	if o.Labels != nil {
		c.Labels = append([]string(nil), o.Labels...)
	}

	return &c
}

// compiled holds the parts of the options resolved once per parser
type compiled struct {
	blankLine *regexp.Regexp
	comment   *regexp.Regexp
	decoder   Decoder
	logger    logrus.FieldLogger
}

func (o *Options) compile() (*compiled, error) {
	if o.ColumnSeparator == "" {
		return nil, errors.New("column separator cannot be empty")
	}

	if o.RowSeparator == "" {
		return nil, errors.New("row separator cannot be empty")
	}

	c := &compiled{logger: o.Logger}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}

	var err error
	if c.blankLine, err = regexp.Compile(o.BlankLinePattern); err != nil {
		return nil, errors.Wrap(err, "invalid blank line pattern")
	}

	if c.comment, err = regexp.Compile(o.CommentPattern); err != nil {
		return nil, errors.Wrap(err, "invalid comment pattern")
	}

	if c.decoder, err = o.selectDecoder(); err != nil {
		return nil, err
	}

	return c, nil
}

// selectDecoder picks the field decoder once per parse. Fractions take
// precedence over custom bars, which take precedence over the default type.
func (o *Options) selectDecoder() (Decoder, error) {
	name := o.DefaultType
	if o.CustomBars {
		name = TypHiLo
	}
	if o.Fractions {
		name = TypFraction
	}

	if o.CustomBars && o.CustomBarsSeparator == "" {
		return nil, errors.New("custom bars separator cannot be empty")
	}

	if o.Fractions && o.FractionSeparator == "" {
		return nil, errors.New("fraction separator cannot be empty")
	}

	decoder, ok := decoders[name]
	if !ok {
		return nil, errors.Errorf("decoder '%s' does not exist", name)
	}

	return decoder, nil
}
