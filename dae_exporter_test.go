package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/dae_exporter/config"
)

const sceneFile = `
groups:
  - name: floor
    vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0], [2, 0, 0]]
    faces:
      - vertices: [0, 1, 2]
`

func newCli(t *testing.T, content string) *cli {
	t.Helper()
	path := filepath.Join(t.TempDir(), "floor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return &cli{scenePath: path, opts: config.Default()}
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitNames(" a,,b c ,"))
	assert.Nil(t, splitNames(""))
}

func TestOutputPath(t *testing.T) {
	c := &cli{scenePath: "dir/room.yaml", opts: config.Default()}
	out, err := c.outputPath()
	require.NoError(t, err)
	assert.Equal(t, "dir/room.dae", out)

	c.opts.Format = "fbx"
	out, err = c.outputPath()
	require.NoError(t, err)
	assert.Equal(t, "dir/room.fbx", out)

	c.outPath = "-"
	out, err = c.outputPath()
	require.NoError(t, err)
	assert.Equal(t, "-", out)
}

func TestRunExitCodes(t *testing.T) {
	c := newCli(t, sceneFile)
	assert.Equal(t, exitOk, c.run())
	data, err := os.ReadFile(strings.TrimSuffix(c.scenePath, ".yaml") + ".dae")
	require.NoError(t, err)
	assert.Contains(t, string(data), `<node name="floor">`)

	c.selection = "ceiling"
	c.outPath = filepath.Join(t.TempDir(), "out.dae")
	assert.Equal(t, exitSelection, c.run())
	_, err = os.Stat(c.outPath)
	assert.True(t, os.IsNotExist(err))

	c = newCli(t, sceneFile+"      - vertices: [0, 1, 3]\n")
	assert.Equal(t, exitDiagnostics, c.run())

	c = newCli(t, "faces: {")
	assert.Equal(t, exitError, c.run())
}
