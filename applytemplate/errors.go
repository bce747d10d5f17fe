package applytemplate

import (
	"errors"
	"fmt"
)

// PluginName prefixes every error raised by the stage so
// callers can tell them apart from other pipeline errors.
const PluginName = "apply-template"

// ConfigError reports an unusable Config. It is returned
// by New and means no item is ever processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"%s: invalid %s option: %s",
		PluginName, e.Field, e.Reason,
	)
}

// Plugin returns PluginName.
func (e *ConfigError) Plugin() string { return PluginName }

// ContextError reports a failure while building the
// context for one item, typically from a context func.
type ContextError struct {
	Path string
	Err  error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf(
		"%s: building context for %s: %v",
		PluginName, e.Path, e.Err,
	)
}

func (e *ContextError) Unwrap() error { return e.Err }

// Plugin returns PluginName.
func (e *ContextError) Plugin() string { return PluginName }

// ResolutionError reports a failing engine or template
// func for one item.
type ResolutionError struct {
	Field string
	Path  string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf(
		"%s: resolving %s for %s: %v",
		PluginName, e.Field, e.Path, e.Err,
	)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Plugin returns PluginName.
func (e *ResolutionError) Plugin() string { return PluginName }

// RenderError reports an unknown engine, a missing
// template or a failed render for one item.
type RenderError struct {
	Engine   string
	Template string
	Path     string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf(
		"%s: rendering %s with %s engine (template %s): %v",
		PluginName, e.Path, e.Engine, e.Template, e.Err,
	)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Plugin returns PluginName.
func (e *RenderError) Plugin() string { return PluginName }

// IsPluginError reports whether err, or any error it
// wraps, was raised by this stage.
func IsPluginError(err error) bool {
	var pe interface{ Plugin() string }

	return errors.As(err, &pe) && pe.Plugin() == PluginName
}
