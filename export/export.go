// Package export runs a whole export of a loaded scene: it marks animation
// paths, picks the root, flattens it and writes the requested format.
package export

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/config"
	"github.com/mogaika/dae_exporter/export/doc"
	"github.com/mogaika/dae_exporter/export/flatten"
	"github.com/mogaika/dae_exporter/scene"
)

type Job struct {
	Options config.Options
	// Select limits the export to the named top-level entities.
	Select []string
	// Paths name top-level groups to flag as animation paths first.
	Paths    []string
	Filename string
	Verbose  io.Writer
}

// IsSelectionError reports whether err was caused by the selection the job
// was started with rather than by the scene content.
func IsSelectionError(err error) bool {
	return errors.Is(err, scene.ErrSelectionCount) ||
		errors.Is(err, scene.ErrSelectionType) ||
		errors.Is(err, scene.ErrUnknownEntity)
}

func (j *Job) root(m *scene.Model) (scene.Entity, error) {
	for _, name := range j.Paths {
		sel, err := scene.Select(m, name)
		if err != nil {
			return nil, err
		}
		if err := scene.SetAnimationPath(sel); err != nil {
			return nil, errors.Wrapf(err, "animation path %q", name)
		}
	}
	if len(j.Select) == 0 {
		return m, nil
	}
	return scene.Select(m, j.Select...)
}

// Flatten builds the document without writing it.
func (j *Job) Flatten(m *scene.Model) (*doc.Document, error) {
	root, err := j.root(m)
	if err != nil {
		return nil, err
	}
	return flatten.Flatten(root, flatten.Options{Lines: j.Options.Lines, Verbose: j.Verbose})
}

// Run exports m to w. Diagnostics are returned with the document, they do
// not fail the export.
func (j *Job) Run(m *scene.Model, w io.Writer) (*doc.Document, error) {
	if err := j.Options.Validate(); err != nil {
		return nil, err
	}
	d, err := j.Flatten(m)
	if err != nil {
		return nil, err
	}
	if err := d.Export(w, j.Options.Format, j.Options.DocumentOptions(j.Filename)); err != nil {
		return d, errors.Wrapf(err, "Failed to write %s", j.Options.Format)
	}
	return d, nil
}
