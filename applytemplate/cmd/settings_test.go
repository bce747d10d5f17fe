package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/apply_template/config"
	"github.com/byte4ever/apply_template/digester"
	"github.com/byte4ever/apply_template/vfile"
)

// writeTemp creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(pa), 0o700))
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func TestWrite_relative_to_base(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	it := vfile.NewBuffer(
		filepath.Join(dir, "in", "sub", "a.txt"),
		[]byte("rendered"),
	)
	it.Base = filepath.Join(dir, "in")

	st := settings{outputDir: outDir}
	require.NoError(t, st.write(it))

	got, err := os.ReadFile(filepath.Join(outDir, "sub", "a.txt")) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(got))
}

func TestWrite_rejects_path_outside_output_dir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	input := writeTemp(t, dir, "up.txt", "original")

	// An input outside base keeps its raw "../" path.
	it := vfile.NewBuffer("../up.txt", []byte("rendered"))
	it.Base = "."

	st := settings{outputDir: outDir, skipUnchanged: true}

	err := st.write(it)
	require.ErrorIs(t, err, errOutsideOutputDir)
	assert.Contains(t, err.Error(), "../up.txt")

	got, err := os.ReadFile(input) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	_, err = os.Stat(input + digester.Suffix)
	assert.True(t, os.IsNotExist(err))
}

func TestOutputPath_absolute_input_stays_inside(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()

	it := vfile.NewBuffer("/elsewhere/a.txt", nil)
	it.Base = "."

	dest, err := settings{outputDir: outDir}.outputPath(it)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "elsewhere", "a.txt"), dest)
}

func TestWrite_skip_unchanged_stores_digest(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()

	it := vfile.NewBuffer("a.txt", []byte("rendered"))
	it.Base = "."

	st := settings{outputDir: outDir, skipUnchanged: true}
	require.NoError(t, st.write(it))

	dest := filepath.Join(outDir, "a.txt")

	stored, err := digester.GetDigest(dest)
	require.NoError(t, err)
	assert.Equal(t, digester.Sum([]byte("rendered")), stored)
}

func TestWrite_stream_to_stdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	it := vfile.NewStream("a.txt", strings.NewReader("streamed"))

	st := settings{stdout: &buf}
	require.NoError(t, st.write(it))
	assert.Equal(t, "streamed", buf.String())
}

func TestOptions_flags_override_config_file(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfgFile := writeTemp(t, dir, "opts.yaml", `
engine: stamp
template: a.tpl
context:
  other: file
  VER: file
`)
	stampFile := writeTemp(t, dir, "status.txt", "VER 1.0\nSHA abc\n")

	st := settings{
		configFile: cfgFile,
		stampFiles: arrayFlags{stampFile},
		variables:  arrayFlags{"LABEL=v{VER}-{SHA}"},
		opts: config.Options{
			Engine: "fasttemplate",
		},
	}

	opts, err := st.options()
	require.NoError(t, err)

	assert.Equal(t, "fasttemplate", opts.Engine)
	assert.Equal(t, "a.tpl", opts.Template)
	assert.Equal(t, "file", opts.Context["other"])

	// The options file context sits above stamps.
	assert.Equal(t, "file", opts.Context["VER"])
	assert.Equal(t, "abc", opts.Context["SHA"])
	assert.Equal(t, "v1.0-abc", opts.Context["LABEL"])
	assert.Equal(
		t,
		map[string]interface{}{"LABEL": "v1.0-abc"},
		opts.Context[config.VariablesKey],
	)
}

func TestOptions_bad_variable(t *testing.T) {
	t.Parallel()

	st := settings{variables: arrayFlags{"NOEQUALS"}}

	_, err := st.options()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAR=value")
}

func TestOpenItems_stream_with_data(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeTemp(t, dir, "a.txt", "A")
	second := writeTemp(t, dir, "b.txt", "B")

	st := settings{
		base:   dir,
		stream: true,
		inputs: []string{first, second},
	}

	items, closer, err := st.openItems(
		map[string]interface{}{"custom": "value"},
	)
	require.NoError(t, err)

	defer closer()

	require.Len(t, items, 2)

	for idx, want := range []string{"A", "B"} {
		it := items[idx]

		require.True(t, it.IsStream())
		assert.Equal(t, dir, it.Base)
		assert.Equal(t, "value", it.Data["custom"])

		by, err := io.ReadAll(it.Stream())
		require.NoError(t, err)
		assert.Equal(t, want, string(by))
	}

	// Each item owns its metadata map.
	items[0].Data["custom"] = "changed"
	assert.Equal(t, "value", items[1].Data["custom"])
}

func TestOpenItems_missing_input(t *testing.T) {
	t.Parallel()

	st := settings{inputs: []string{"/nonexistent/a.txt"}}

	_, _, err := st.openItems(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening inputs")
}
