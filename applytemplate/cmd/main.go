// Binary apply_template renders files through a templating
// engine. Each input file becomes an item whose path,
// metadata and contents are exposed to the template
// together with user context from an options file,
// stamp info files and NAME=VALUE variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/byte4ever/apply_template/applytemplate"
	"github.com/byte4ever/apply_template/config"
	"github.com/byte4ever/apply_template/vfile"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	if af == nil {
		return ""
	}

	return strings.Join(*af, ",")
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

func parseFlags() settings {
	var (
		st    settings
		props arrayFlags
	)

	flag.StringVar(
		&st.configFile, "config", "",
		"YAML or JSON options file",
	)

	flag.StringVar(
		&st.opts.Engine, "engine", "",
		"Templating engine: fasttemplate, stamp or gotemplate",
	)

	flag.StringVar(
		&st.opts.Template, "template", "",
		"Template file path",
	)

	flag.Var(
		&props, "prop",
		"File property copied into the context (repeatable)",
	)

	flag.Var(
		&st.variables, "variable",
		"Context variable in NAME=VALUE format (repeatable)",
	)

	flag.Var(
		&st.stampFiles, "stamp_info_file",
		"Stamp info file path (repeatable)",
	)

	flag.StringVar(
		&st.dataFile, "data_file", "",
		"YAML or JSON mapping used as every file's data",
	)

	flag.StringVar(
		&st.base, "base", ".",
		"Base directory input paths are relative to",
	)

	flag.StringVar(
		&st.outputDir, "output_dir", "",
		"Output directory (stdout if empty)",
	)

	flag.BoolVar(
		&st.stream, "stream", false,
		"Read inputs as streams instead of buffers",
	)

	flag.BoolVar(
		&st.skipUnchanged, "skip_unchanged", false,
		"Keep outputs whose digest is unchanged",
	)

	flag.StringVar(
		&st.opts.StartTag, "start_tag", "",
		"Start tag for fasttemplate placeholders",
	)

	flag.StringVar(
		&st.opts.EndTag, "end_tag", "",
		"End tag for fasttemplate placeholders",
	)

	flag.BoolVar(
		&st.verbose, "verbose", false,
		"Log every rendered file",
	)

	flag.Parse()

	if len(props) > 0 {
		st.opts.Props = props
	}

	st.inputs = flag.Args()
	st.stdout = os.Stdout

	return st
}

func run() error {
	const errCtx = "apply_template"

	st := parseFlags()

	level := slog.LevelInfo
	if st.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	))
	slog.SetDefault(logger)

	opts, err := st.options()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	stage, err := applytemplate.New(opts.StageConfig(logger))
	if err != nil {
		return err
	}

	var data map[string]interface{}

	if st.dataFile != "" {
		data, err = config.LoadMapping(st.dataFile)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	items, closer, err := st.openItems(data)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer closer()

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt,
	)
	defer stop()

	in := make(chan *vfile.Item, len(items))
	for _, it := range items {
		in <- it
	}

	close(in)

	out, errs := stage.Run(ctx, in)

	failed := 0

	for out != nil || errs != nil {
		select {
		case it, ok := <-out:
			if !ok {
				out = nil

				continue
			}

			if err := st.write(it); err != nil {
				slog.Error("write failed", "path", it.Path, "error", err)

				failed++
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			slog.Error("render failed", "error", err)

			failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if failed > 0 {
		return fmt.Errorf(
			"%s: %d of %d files failed",
			errCtx, failed, len(items),
		)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
