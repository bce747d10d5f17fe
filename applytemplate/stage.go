package applytemplate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/byte4ever/apply_template/templating"
	"github.com/byte4ever/apply_template/vfile"
)

// Stage renders items according to a validated Config. It
// keeps no per-item state and is safe for concurrent use.
type Stage struct {
	cfg      Config
	props    []string
	registry *templating.Registry
	logger   *slog.Logger
	runID    uuid.UUID
}

// New validates cfg and returns a ready Stage. A missing
// engine or template yields a *ConfigError.
func New(cfg Config) (*Stage, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	props := DefaultProps
	if cfg.Props != nil {
		props = append([]string(nil), cfg.Props...)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = templating.Default()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.New()

	return &Stage{
		cfg:      cfg,
		props:    props,
		registry: registry,
		logger:   logger.With("stage", PluginName, "run", runID.String()),
		runID:    runID,
	}, nil
}

// RunID identifies this stage instance in log records.
func (st *Stage) RunID() uuid.UUID {
	return st.runID
}

// BuildContext layers item properties, the user context
// and the raw item into a fresh Context.
func (st *Stage) BuildContext(it *vfile.Item) (Context, error) {
	ctx := newContext(len(st.props) + 1)

	for _, name := range st.props {
		if name == vfile.PropContents {
			txt, err := it.Text()
			if err != nil {
				return Context{}, &ContextError{Path: it.Path, Err: err}
			}

			ctx.set(name, txt)

			continue
		}

		val, _ := it.Prop(name)
		ctx.set(name, val)
	}

	if st.cfg.Context.IsSet() {
		user, err := resolve(st.cfg.Context, Context{}, it)
		if err != nil {
			return Context{}, &ContextError{Path: it.Path, Err: err}
		}

		keys := make([]string, 0, len(user))
		for key := range user {
			keys = append(keys, key)
		}

		// New keys are appended in sorted order.
		sort.Strings(keys)

		for _, key := range keys {
			ctx.set(key, user[key])
		}
	}

	ctx.set(FileKey, it)

	return *ctx, nil
}

// Process renders one item and replaces its payload with
// the output. The returned item is it. Failures are
// *ContextError, *ResolutionError or *RenderError.
func (st *Stage) Process(
	ctx context.Context,
	it *vfile.Item,
) (*vfile.Item, error) {
	if it == nil {
		return nil, &RenderError{Err: errors.New("nil item")}
	}

	if it.IsNull() {
		return nil, &RenderError{
			Path: it.Path,
			Err:  errors.New("item has no contents"),
		}
	}

	tctx, err := st.BuildContext(it)
	if err != nil {
		return nil, err
	}

	engineName, err := resolve(st.cfg.Engine, tctx, it)
	if err != nil {
		return nil, &ResolutionError{
			Field: "engine", Path: it.Path, Err: err,
		}
	}

	tplPath, err := resolve(st.cfg.Template, tctx, it)
	if err != nil {
		return nil, &ResolutionError{
			Field: "template", Path: it.Path, Err: err,
		}
	}

	renderErr := func(err error) error {
		return &RenderError{
			Engine:   engineName,
			Template: tplPath,
			Path:     it.Path,
			Err:      err,
		}
	}

	en, err := st.registry.Lookup(engineName)
	if err != nil {
		return nil, renderErr(err)
	}

	out, err := en.Render(ctx, tplPath, tctx.Map())
	if err != nil {
		return nil, renderErr(err)
	}

	if it.IsStream() {
		it.SetStream(strings.NewReader(out))
	} else {
		it.SetBuffer([]byte(out))
	}

	st.logger.Debug(
		"rendered",
		"path", it.Path,
		"engine", engineName,
		"template", tplPath,
		"bytes", len(out),
	)

	return it, nil
}

// Run processes items from in one at a time, in arrival
// order. Rendered items are sent on the first channel and
// per-item failures on the second; a failed item is
// dropped and processing continues. Both channels close
// once in is closed or ctx is done, so callers must drain
// both.
func (st *Stage) Run(
	ctx context.Context,
	in <-chan *vfile.Item,
) (<-chan *vfile.Item, <-chan error) {
	out := make(chan *vfile.Item)
	errs := make(chan error)

	go func() {
		defer close(errs)
		defer close(out)

		for {
			var (
				it *vfile.Item
				ok bool
			)

			select {
			case <-ctx.Done():
				return
			case it, ok = <-in:
				if !ok {
					return
				}
			}

			res, err := st.Process(ctx, it)
			if err != nil {
				st.logger.Debug("item failed", "error", err)

				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}

				continue
			}

			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}
