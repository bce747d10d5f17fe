package applytemplate

import (
	"fmt"
	"log/slog"

	"github.com/byte4ever/apply_template/templating"
	"github.com/byte4ever/apply_template/vfile"
)

// Config holds the stage settings. It is read once by New
// and never changes afterwards.
type Config struct {
	// Engine names the templating engine. Required.
	Engine Value[string]

	// Template locates the template. Required.
	Template Value[string]

	// Props lists item properties copied into the
	// context, in order. Nil means DefaultProps; a
	// non-nil list replaces them entirely.
	Props []string

	// Context is merged over the item properties. A
	// Computed context receives an empty Context; only
	// the item is available to it.
	Context Value[map[string]interface{}]

	// Registry resolves engine identifiers. Nil means
	// templating.Default().
	Registry *templating.Registry

	// Logger receives per-item debug records. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// validate checks required options and prop names.
func (cfg Config) validate() error {
	if !cfg.Engine.IsSet() {
		return &ConfigError{
			Field:  "engine",
			Reason: "missing engine option",
		}
	}

	if !cfg.Template.IsSet() {
		return &ConfigError{
			Field:  "template",
			Reason: "missing template option",
		}
	}

	for _, name := range cfg.Props {
		if !vfile.IsProp(name) {
			return &ConfigError{
				Field:  "props",
				Reason: fmt.Sprintf("unknown file property %q", name),
			}
		}
	}

	return nil
}
