package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/config"
	"github.com/mogaika/dae_exporter/export"
	"github.com/mogaika/dae_exporter/export/doc"
	"github.com/mogaika/dae_exporter/scene"
	"github.com/mogaika/dae_exporter/utils"
	"github.com/mogaika/dae_exporter/web"
)

const (
	exitOk = iota
	exitError
	exitSelection
	exitDiagnostics
)

var term = termenv.NewOutput(os.Stderr)

type cli struct {
	scenePath, outPath, configPath string
	selection, paths               string
	dump, watch, verbose           bool
	opts                           config.Options
}

func splitNames(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// outputPath defaults to the scene path with the format extension.
func (c *cli) outputPath() (string, error) {
	if c.outPath != "" {
		return c.outPath, nil
	}
	f, err := doc.LookupFormat(c.opts.Format)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(c.scenePath, filepath.Ext(c.scenePath)) + f.Extension, nil
}

func (c *cli) job() *export.Job {
	job := &export.Job{
		Options:  c.opts,
		Select:   splitNames(c.selection),
		Paths:    splitNames(c.paths),
		Filename: filepath.Base(c.scenePath),
	}
	if c.verbose {
		job.Verbose = os.Stderr
	}
	return job
}

// run performs one export and returns the process exit code.
func (c *cli) run() int {
	enc, err := config.LookupEncoding(c.opts.Encoding)
	if err != nil {
		return report(exitError, err)
	}
	model, err := scene.LoadFile(c.scenePath, enc)
	if err != nil {
		return report(exitError, err)
	}

	out, err := c.outputPath()
	if err != nil {
		return report(exitError, err)
	}

	var w io.Writer = os.Stdout
	var f *os.File
	if out != "-" {
		if f, err = os.Create(out); err != nil {
			return report(exitError, errors.Wrapf(err, "Failed to create %q", out))
		}
		defer f.Close()
		w = f
	}

	d, err := c.job().Run(model, w)
	if err != nil {
		if f != nil {
			f.Close()
			os.Remove(out)
		}
		if export.IsSelectionError(err) {
			return report(exitSelection, err)
		}
		return report(exitError, err)
	}

	if c.dump {
		utils.Dump(os.Stderr, d)
	}
	for _, diag := range d.Diagnostics {
		fmt.Fprintln(os.Stderr, term.String("warning:").Foreground(term.Color("3")).Bold(), diag)
	}
	if out != "-" {
		fmt.Fprintln(os.Stderr, term.String("exported").Foreground(term.Color("2")), out)
	}
	if len(d.Diagnostics) != 0 {
		return exitDiagnostics
	}
	return exitOk
}

func report(code int, err error) int {
	fmt.Fprintln(os.Stderr, term.String("error:").Foreground(term.Color("1")).Bold(), err)
	return code
}

func main() {
	var c cli
	var addr, format, encoding, author, upAxis string
	var nolines bool
	var digits int
	flag.StringVar(&addr, "i", "", "Start the export server on this address instead of exporting once")
	flag.StringVar(&c.scenePath, "scene", "", "Path to the scene description (YAML)")
	flag.StringVar(&c.outPath, "o", "", "Output file, - for stdout (default: scene name with format extension)")
	flag.StringVar(&c.configPath, "config", "", "Export options file (.yaml, .yml or .toml)")
	flag.StringVar(&format, "format", "", "Output format: dae, glb or fbx")
	flag.BoolVar(&nolines, "nolines", false, "Do not export edges as lines")
	flag.StringVar(&c.selection, "select", "", "Comma separated top-level entities to export instead of the whole model")
	flag.StringVar(&c.paths, "path", "", "Comma separated top-level groups to export as animation paths")
	flag.StringVar(&encoding, "encoding", "", "Charmap of the scene file, see -encodings")
	flag.StringVar(&author, "author", "", "Author stored in the document asset")
	flag.StringVar(&upAxis, "up", "", "Up axis: X_UP, Y_UP or Z_UP")
	flag.IntVar(&digits, "digits", 0, "Fractional digits of written floats")
	flag.BoolVar(&c.dump, "dump", false, "Dump the flattened document to stderr")
	flag.BoolVar(&c.watch, "watch", false, "Export again whenever the scene file changes")
	flag.BoolVar(&c.verbose, "v", false, "Trace mesh building to stderr")
	listEncodings := flag.Bool("encodings", false, "List known encodings and exit")
	flag.Parse()

	if *listEncodings {
		for _, name := range config.ListEncodings() {
			fmt.Println(name)
		}
		return
	}

	c.opts = config.Default()
	if c.configPath != "" {
		opts, err := config.LoadFile(c.configPath)
		if err != nil {
			os.Exit(report(exitError, err))
		}
		c.opts = opts
	}

	// explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			c.opts.Format = format
		case "nolines":
			c.opts.Lines = !nolines
		case "encoding":
			c.opts.Encoding = encoding
		case "author":
			c.opts.Author = author
		case "up":
			c.opts.UpAxis = upAxis
		case "digits":
			c.opts.FloatDigits = digits
		case "v":
			c.opts.Verbose = c.verbose
		}
	})
	c.verbose = c.opts.Verbose
	if err := c.opts.Validate(); err != nil {
		os.Exit(report(exitError, err))
	}

	if addr != "" {
		if err := web.StartServer(addr, c.opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	if c.scenePath == "" {
		flag.PrintDefaults()
		os.Exit(exitError)
	}

	if c.watch {
		if err := c.watchScene(); err != nil {
			log.Fatal(err)
		}
		return
	}
	os.Exit(c.run())
}
