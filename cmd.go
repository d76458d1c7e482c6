package main

import (
	gocsv "encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nicored/tsdata/csv"
	"github.com/nicored/tsdata/timeseries"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Options      *csv.Options     `yaml:"options"`
	JsTransforms []string         `yaml:"jsTransforms"`
	Transforms   []*TransformConf `yaml:"transforms"`
}

// TransformConf adds the registered transformer named Transform to Cols, or
// to every data column when Data is set. No Cols means every column.
type TransformConf struct {
	Name      string              `yaml:"name"`
	Transform string              `yaml:"transform"`
	Cols      []int               `yaml:"cols"`
	Data      bool                `yaml:"data"`
	Args      timeseries.FuncArgs `yaml:"args"`
}

type Data struct {
	Config *Config

	configFile string
	csvFile    string
}

func main() {
	if len(os.Args) != 3 {
		logrus.Fatal("expecting 2 arguments, the configuration file and the csv file. eg. tsdata myconfig.yml mydata.csv")
	}

	d, err := NewData(os.Args[1], os.Args[2])
	if err != nil {
		logrus.Fatal(err)
	}

	if err = d.Do(os.Stdout); err != nil {
		logrus.Fatal(err)
	}
}

func NewData(configFile string, csvFile string) (data *Data, err error) {
	data = &Data{
		configFile: configFile,
		csvFile:    csvFile,
	}

	if err = data.parseConfig(); err != nil {
		return nil, err
	}

	return
}

// Do parses the csv file, applies the configured transforms and prints the
// result as csv to w
func (d *Data) Do(w io.Writer) error {
	content, err := os.ReadFile(d.csvFile)
	if err != nil {
		return err
	}

	p, err := csv.New(content, d.Config.Options)
	if err != nil {
		return err
	}

	for _, diag := range p.Diagnostics() {
		logrus.WithField("file", d.csvFile).Warn(diag)
	}

	for i, t := range d.Config.Transforms {
		name := t.Name
		if name == "" {
			name = t.Transform + "#" + strconv.Itoa(i)
		}

		logrus.WithFields(logrus.Fields{
			"name":      name,
			"transform": t.Transform,
			"cols":      t.Cols,
		}).Debug("applying transform")

		if t.Data {
			fn, err := timeseries.NamedTransform(t.Transform, t.Args)
			if err != nil {
				return errors.Wrapf(err, "transform '%s'", name)
			}
			err = p.AddDataTransform(fn)
			if err != nil {
				return errors.Wrapf(err, "transform '%s'", name)
			}
			continue
		}

		if err = p.AddNamedTransform(t.Transform, t.Args, t.Cols...); err != nil {
			return errors.Wrapf(err, "transform '%s'", name)
		}
	}

	return printRows(w, p.Labels(), p.Snapshot(), d.Config.Options)
}

func (d *Data) parseConfig() error {
	content, err := os.ReadFile(d.configFile)
	if err != nil {
		return err
	}

	conf := &Config{Options: csv.DefaultOptions()}
	err = yaml.Unmarshal(content, conf)
	if err != nil {
		return err
	}

	if conf.Options == nil {
		conf.Options = csv.DefaultOptions()
	}

	d.Config = conf

	return d.importJsTransforms()
}

// importJsTransforms registers the javascript transformers, named after their
// file name. Paths are relative to the configuration file.
func (d *Data) importJsTransforms() error {
	for _, jsFilepath := range d.Config.JsTransforms {
		if !filepath.IsAbs(jsFilepath) {
			jsFilepath = filepath.Join(filepath.Dir(d.configFile), jsFilepath)
		}

		src, err := os.ReadFile(jsFilepath)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(jsFilepath), filepath.Ext(jsFilepath))

		transformer, err := timeseries.NewJSTransformer(name, string(src))
		if err != nil {
			return errors.Wrapf(err, "error loading '%s'", jsFilepath)
		}

		if err = timeseries.AddTransformers(transformer); err != nil {
			return errors.Wrapf(err, "error loading '%s'", jsFilepath)
		}
	}

	return nil
}

func printRows(out io.Writer, labels []string, rows [][]timeseries.Value, o *csv.Options) error {
	w := gocsv.NewWriter(out)

	if len(labels) > 0 {
		if err := w.Write(labels); err != nil {
			return err
		}
	}

	pairSep := o.CustomBarsSeparator
	if o.Fractions {
		pairSep = o.FractionSeparator
	}

	for i, r := range rows {
		output := make([]string, len(r))
		for j, v := range r {
			output[j] = formatValue(v, pairSep)
		}

		if err := w.Write(output); err != nil {
			return err
		}

		if i > 1 && i%100 == 0 {
			w.Flush()
		}
	}

	w.Flush()
	return w.Error()
}

func formatValue(v timeseries.Value, pairSep string) string {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Equal(val.Truncate(24 * time.Hour)) {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case timeseries.Pair:
		return formatValue(val[0], pairSep) + pairSep + formatValue(val[1], pairSep)
	case timeseries.Group:
		parts := make([]string, len(val))
		for i, g := range val {
			parts[i] = formatValue(g, pairSep)
		}
		return strings.Join(parts, " ")
	}

	return ""
}
