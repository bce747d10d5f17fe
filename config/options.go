package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/apply_template/applytemplate"
	"github.com/byte4ever/apply_template/templating"
)

// Options is the declarative form of a stage
// configuration.
type Options struct {
	Engine   string                 `json:"engine"    yaml:"engine"`
	Template string                 `json:"template"  yaml:"template"`
	Props    []string               `json:"props"     yaml:"props"`
	Context  map[string]interface{} `json:"context"   yaml:"context"`
	StartTag string                 `json:"start_tag" yaml:"start_tag"`
	EndTag   string                 `json:"end_tag"   yaml:"end_tag"`
}

// LoadFile reads Options from path. Files ending in
// ".json" are decoded as JSON, anything else as YAML.
func LoadFile(path string) (Options, error) {
	const errCtx = "loading options"

	var opts Options

	if err := decodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return opts, nil
}

// LoadMapping reads a YAML or JSON mapping from path, for
// use as item metadata.
func LoadMapping(path string) (map[string]interface{}, error) {
	const errCtx = "loading mapping"

	var mp map[string]interface{}

	if err := decodeFile(path, &mp); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return mp, nil
}

func decodeFile(path string, target interface{}) error {
	content, err := os.ReadFile(path) //nolint:gosec // paths from CLI flags
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(content, target); err != nil {
			return fmt.Errorf("decoding json %s: %w", path, err)
		}

		return nil
	}

	if err := yaml.Unmarshal(content, target); err != nil {
		return fmt.Errorf("decoding yaml %s: %w", path, err)
	}

	return nil
}

// Merge returns o with every non-zero field of over
// applied on top. Context maps are merged key by key.
func (o Options) Merge(over Options) Options {
	out := o

	if over.Engine != "" {
		out.Engine = over.Engine
	}

	if over.Template != "" {
		out.Template = over.Template
	}

	if over.Props != nil {
		out.Props = over.Props
	}

	if over.StartTag != "" {
		out.StartTag = over.StartTag
	}

	if over.EndTag != "" {
		out.EndTag = over.EndTag
	}

	if len(over.Context) > 0 {
		merged := make(
			map[string]interface{},
			len(o.Context)+len(over.Context),
		)

		for key, val := range o.Context {
			merged[key] = val
		}

		for key, val := range over.Context {
			merged[key] = val
		}

		out.Context = merged
	}

	return out
}

// Registry returns the built-in engines. Custom tags
// replace the delimiters of the fasttemplate engine.
func (o Options) Registry() *templating.Registry {
	if o.StartTag == "" && o.EndTag == "" {
		return templating.Default()
	}

	reg := templating.NewBuiltinRegistry(templating.Loader{})
	reg.Register(templating.EngineFast, &templating.FastEngine{
		StartTag: o.StartTag,
		EndTag:   o.EndTag,
	})

	return reg
}

// StageConfig converts o into a stage configuration. An
// empty engine or template stays unset so that
// applytemplate.New reports it.
func (o Options) StageConfig(
	logger *slog.Logger,
) applytemplate.Config {
	cfg := applytemplate.Config{
		Props:    o.Props,
		Registry: o.Registry(),
		Logger:   logger,
	}

	if o.Engine != "" {
		cfg.Engine = applytemplate.Static(o.Engine)
	}

	if o.Template != "" {
		cfg.Template = applytemplate.Static(o.Template)
	}

	if o.Context != nil {
		cfg.Context = applytemplate.Static(o.Context)
	}

	return cfg
}
