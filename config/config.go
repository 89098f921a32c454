// Package config holds the export options shared by the command line and
// the web service, loadable from YAML or TOML files.
package config

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/dae_exporter/export/doc"
)

var upAxes = []string{"X_UP", "Y_UP", "Z_UP"}

type Options struct {
	Format      string `yaml:"format" toml:"format"`
	Lines       bool   `yaml:"lines" toml:"lines"`
	FloatDigits int    `yaml:"float_digits" toml:"float_digits"`
	UpAxis      string `yaml:"up_axis" toml:"up_axis"`
	Encoding    string `yaml:"encoding" toml:"encoding"`
	Author      string `yaml:"author" toml:"author"`
	Verbose     bool   `yaml:"verbose" toml:"verbose"`
}

func Default() Options {
	return Options{
		Format:      "dae",
		Lines:       true,
		FloatDigits: 6,
		UpAxis:      "Z_UP",
	}
}

// LoadFile overlays the file at path on Default(). The decoder is chosen by
// extension.
func LoadFile(path string) (Options, error) {
	opts := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "Failed to read config %q", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrapf(err, "Failed to parse config %q", path)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrapf(err, "Failed to parse config %q", path)
		}
	default:
		return opts, errors.Errorf("Unknown config format %q", ext)
	}

	return opts, opts.Validate()
}

// DocumentOptions are the writer settings for a scene named filename.
func (o Options) DocumentOptions(filename string) doc.Options {
	return doc.Options{
		FloatDigits: o.FloatDigits,
		UpAxis:      o.UpAxis,
		Author:      o.Author,
		Filename:    filename,
	}
}

func (o Options) Validate() error {
	if _, err := doc.LookupFormat(o.Format); err != nil {
		return err
	}
	if o.FloatDigits < 0 || o.FloatDigits > 17 {
		return errors.Errorf("float_digits %d out of [0,17]", o.FloatDigits)
	}
	if o.UpAxis != "" {
		found := false
		for _, axis := range upAxes {
			found = found || axis == o.UpAxis
		}
		if !found {
			return errors.Errorf("up_axis %q is not one of %v", o.UpAxis, upAxes)
		}
	}
	if _, err := LookupEncoding(o.Encoding); err != nil {
		return err
	}
	return nil
}
