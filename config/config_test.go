package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/apply_template/applytemplate"
	"github.com/byte4ever/apply_template/config"
	"github.com/byte4ever/apply_template/templating"
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
	require.NoError(
		tb,
		os.WriteFile(pa, []byte(content), 0o600),
	)

	return pa
}

func TestLoadFile_yaml(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "opts.yaml", `
engine: fasttemplate
template: t.tpl
props: [path, base]
context:
  other: user
  nested:
    key: value
start_tag: "<%"
end_tag: "%>"
`)

	opts, err := config.LoadFile(pa)
	require.NoError(t, err)

	assert.Equal(t, "fasttemplate", opts.Engine)
	assert.Equal(t, "t.tpl", opts.Template)
	assert.Equal(t, []string{"path", "base"}, opts.Props)
	assert.Equal(t, "user", opts.Context["other"])
	assert.Equal(
		t,
		map[string]interface{}{"key": "value"},
		opts.Context["nested"],
	)
	assert.Equal(t, "<%", opts.StartTag)
	assert.Equal(t, "%>", opts.EndTag)
}

func TestLoadFile_json(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "opts.json", `{
		"engine": "gotemplate",
		"template": "t.tpl",
		"context": {"other": "user"}
	}`)

	opts, err := config.LoadFile(pa)
	require.NoError(t, err)

	assert.Equal(t, "gotemplate", opts.Engine)
	assert.Equal(t, "t.tpl", opts.Template)
	assert.Nil(t, opts.Props)
	assert.Equal(t, "user", opts.Context["other"])
}

func TestLoadFile_errors(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFile("/nonexistent/opts.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading options")

	pa := writeTemp(t, t.TempDir(), "bad.json", "{not json")

	_, err = config.LoadFile(pa)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding json")
}

func TestLoadMapping(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "data.yml", "custom: value\n")

	mp, err := config.LoadMapping(pa)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"custom": "value"}, mp)
}

func TestOptions_Merge(t *testing.T) {
	t.Parallel()

	base := config.Options{
		Engine:   "stamp",
		Template: "a.tpl",
		Props:    []string{"path"},
		Context:  map[string]interface{}{"a": "1", "b": "1"},
	}

	got := base.Merge(config.Options{
		Template: "b.tpl",
		Context:  map[string]interface{}{"b": "2"},
	})

	assert.Equal(t, "stamp", got.Engine)
	assert.Equal(t, "b.tpl", got.Template)
	assert.Equal(t, []string{"path"}, got.Props)
	assert.Equal(
		t,
		map[string]interface{}{"a": "1", "b": "2"},
		got.Context,
	)

	// The receiver is left alone.
	assert.Equal(t, "1", base.Context["b"])
}

func TestOptions_StageConfig_missing_engine(t *testing.T) {
	t.Parallel()

	cfg := config.Options{Template: "t.tpl"}.StageConfig(nil)

	_, err := applytemplate.New(cfg)

	var ce *applytemplate.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "engine", ce.Field)
}

func TestOptions_StageConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Options{
		Engine:   "fasttemplate",
		Template: "t.tpl",
		Context:  map[string]interface{}{"k": "v"},
	}.StageConfig(nil)

	assert.True(t, cfg.Engine.IsSet())
	assert.True(t, cfg.Template.IsSet())
	assert.True(t, cfg.Context.IsSet())
	assert.Same(t, templating.Default(), cfg.Registry)

	_, err := applytemplate.New(cfg)
	require.NoError(t, err)
}

func TestOptions_Registry_custom_tags(t *testing.T) {
	t.Parallel()

	reg := config.Options{StartTag: "<%", EndTag: "%>"}.Registry()
	assert.NotSame(t, templating.Default(), reg)

	en, err := reg.Lookup(templating.EngineFast)
	require.NoError(t, err)

	fast, ok := en.(*templating.FastEngine)
	require.True(t, ok)
	assert.Equal(t, "<%", fast.StartTag)
	assert.Equal(t, "%>", fast.EndTag)
}

func TestLoadStamps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sf1 := writeTemp(
		t, dir, "s1.txt",
		"VER 1.0\nMSG hello world\nBADLINE\n",
	)
	sf2 := writeTemp(t, dir, "s2.txt", "VER 2.0\n")

	stamps, err := config.LoadStamps([]string{sf1, sf2})
	require.NoError(t, err)

	assert.Len(t, stamps, 2)
	assert.Equal(t, "2.0", stamps["VER"])
	assert.Equal(t, "hello world", stamps["MSG"])

	_, err = config.LoadStamps([]string{"/nonexistent/s.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading stamps")
}

func TestParseVars(t *testing.T) {
	t.Parallel()

	got, err := config.ParseVars(
		[]string{"AUTHOR={BUILD_USER}", "KEEP={UNKNOWN}", "EQ=a=b"},
		config.Stamps{"BUILD_USER": "alice"},
	)
	require.NoError(t, err)

	assert.Equal(t, "alice", got["AUTHOR"])
	assert.Equal(t, "{UNKNOWN}", got["KEEP"])
	assert.Equal(t, "a=b", got["EQ"])
	assert.Equal(
		t,
		map[string]interface{}{
			"AUTHOR": "alice",
			"KEEP":   "{UNKNOWN}",
			"EQ":     "a=b",
		},
		got[config.VariablesKey],
	)
}

func TestParseVars_bad_format(t *testing.T) {
	t.Parallel()

	_, err := config.ParseVars([]string{"NOEQUALS"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAR=value")

	_, err = config.ParseVars([]string{"=value"}, nil)
	require.Error(t, err)
}

func TestUserContext_layering(t *testing.T) {
	t.Parallel()

	got := config.UserContext(
		config.Stamps{"VER": "stamp", "A": "stamp"},
		map[string]interface{}{"VER": "file", "B": "file"},
		map[string]interface{}{"VER": "var"},
	)

	assert.Equal(
		t,
		map[string]interface{}{
			"VER": "var",
			"A":   "stamp",
			"B":   "file",
			config.StampsKey: map[string]interface{}{
				"VER": "stamp",
				"A":   "stamp",
			},
		},
		got,
	)
}

func FuzzParseVars(f *testing.F) {
	f.Add("A={B}", "B", "x")
	f.Add("A={", "B", "x")
	f.Add("=", "", "")
	f.Add("A=}{", "k", "v")

	f.Fuzz(func(
		t *testing.T,
		vr string,
		key string,
		val string,
	) {
		// We only verify it does not panic.
		_, _ = config.ParseVars( //nolint:errcheck // fuzz: error irrelevant
			[]string{vr},
			config.Stamps{key: val},
		)
	})
}

func TestUserContext_without_stamps(t *testing.T) {
	t.Parallel()

	got := config.UserContext(
		nil,
		map[string]interface{}{"B": "file"},
		nil,
	)

	assert.Equal(t, map[string]interface{}{"B": "file"}, got)
}

func TestStamps_Expand(t *testing.T) {
	t.Parallel()

	sm := config.Stamps{"SHA": "deadbeef"}

	assert.Equal(t, "at deadbeef", sm.Expand("at {SHA}"))
	assert.Equal(t, "{NOPE}-deadbeef", sm.Expand("{NOPE}-{SHA}"))
	assert.Equal(t, "plain", config.Stamps(nil).Expand("plain"))
}
