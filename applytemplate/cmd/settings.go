package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/apply_template/config"
	"github.com/byte4ever/apply_template/digester"
	"github.com/byte4ever/apply_template/vfile"
)

// errOutsideOutputDir is returned for items whose
// relative path climbs out of the output directory.
var errOutsideOutputDir = errors.New("output escapes output directory")

// settings holds the parsed command line.
type settings struct {
	configFile    string
	dataFile      string
	base          string
	outputDir     string
	stream        bool
	skipUnchanged bool
	verbose       bool
	stampFiles    arrayFlags
	variables     arrayFlags
	opts          config.Options
	inputs        []string

	// stdout receives results when outputDir is empty.
	stdout io.Writer
}

// options merges the options file, flags, stamps and
// variables.
func (st settings) options() (config.Options, error) {
	var opts config.Options

	if st.configFile != "" {
		loaded, err := config.LoadFile(st.configFile)
		if err != nil {
			return config.Options{}, err
		}

		opts = loaded
	}

	opts = opts.Merge(st.opts)

	stamps, err := config.LoadStamps(st.stampFiles)
	if err != nil {
		return config.Options{}, err
	}

	vars, err := config.ParseVars(st.variables, stamps)
	if err != nil {
		return config.Options{}, err
	}

	if len(stamps) > 0 || len(vars) > 0 {
		opts.Context = config.UserContext(stamps, opts.Context, vars)
	}

	return opts, nil
}

// openItems loads every input. Streamed inputs stay open
// until the returned closer runs.
func (st settings) openItems(
	data map[string]interface{},
) ([]*vfile.Item, func(), error) {
	const errCtx = "opening inputs"

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var (
		items []*vfile.Item
		files []*os.File
	)

	closer := func() {
		for _, fi := range files {
			_ = fi.Close() //nolint:errcheck // best-effort close
		}
	}

	for _, pa := range st.inputs {
		var it *vfile.Item

		if st.stream {
			fi, err := os.Open(pa) //nolint:gosec // paths from CLI args
			if err != nil {
				closer()

				return nil, nil, fmt.Errorf("%s: %w", errCtx, err)
			}

			files = append(files, fi)
			it = vfile.NewStream(pa, fi)
		} else {
			content, err := os.ReadFile(pa) //nolint:gosec // paths from CLI args
			if err != nil {
				closer()

				return nil, nil, fmt.Errorf("%s: %w", errCtx, err)
			}

			it = vfile.NewBuffer(pa, content)
		}

		it.Base = st.base
		it.Cwd = cwd
		it.Data = make(map[string]interface{}, len(data))

		for key, val := range data {
			it.Data[key] = val
		}

		items = append(items, it)
	}

	return items, closer, nil
}

// outputPath maps an item to its destination under
// outputDir. Items outside base keep their raw path, which
// must still land inside outputDir.
func (st settings) outputPath(it *vfile.Item) (string, error) {
	dest := filepath.Join(st.outputDir, it.Relative())

	rel, err := filepath.Rel(st.outputDir, dest)
	if err != nil ||
		rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf(
			"%w: %s", errOutsideOutputDir, it.Path,
		)
	}

	return dest, nil
}

// write emits one rendered item to the output directory
// or stdout.
func (st settings) write(it *vfile.Item) error {
	const errCtx = "writing result"

	var content []byte

	if it.IsStream() {
		by, err := io.ReadAll(it.Stream())
		if err != nil {
			return fmt.Errorf("%s: %s: %w", errCtx, it.Path, err)
		}

		content = by
	} else {
		content = it.Buffer()
	}

	if st.outputDir == "" {
		out := st.stdout
		if out == nil {
			out = os.Stdout
		}

		if _, err := out.Write(content); err != nil {
			return fmt.Errorf("%s: writing to stdout: %w", errCtx, err)
		}

		return nil
	}

	dest, err := st.outputPath(it)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if st.skipUnchanged {
		wrote, err := digester.WriteIfChanged(dest, content, 0o666) //nolint:gosec // generated files are world readable
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		if !wrote {
			slog.Info("unchanged", "output", dest)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil { //nolint:gosec // output dirs are world readable
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.WriteFile(dest, content, 0o666); err != nil { //nolint:gosec // generated files are world readable
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
