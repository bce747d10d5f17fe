package templating

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// GoEngine renders templates with text/template. Missing
// map keys render as their zero value.
type GoEngine struct {
	Loader Loader
	Funcs  template.FuncMap

	mu    sync.Mutex
	cache map[string]*template.Template
}

// Render implements Engine.
func (en *GoEngine) Render(
	ctx context.Context,
	locator string,
	data map[string]interface{},
) (string, error) {
	const errCtx = "rendering gotemplate"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := en.template(locator)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w", errCtx, locator, err,
		)
	}

	return sb.String(), nil
}

func (en *GoEngine) template(
	locator string,
) (*template.Template, error) {
	en.mu.Lock()
	defer en.mu.Unlock()

	if tpl, ok := en.cache[locator]; ok {
		return tpl, nil
	}

	body, err := en.Loader.Load(locator)
	if err != nil {
		return nil, err
	}

	tpl, err := template.New(locator).
		Option("missingkey=zero").
		Funcs(en.Funcs).
		Parse(body)
	if err != nil {
		return nil, fmt.Errorf(
			"parsing template %s: %w", locator, err,
		)
	}

	if en.cache == nil {
		en.cache = make(map[string]*template.Template)
	}

	en.cache[locator] = tpl

	return tpl, nil
}
