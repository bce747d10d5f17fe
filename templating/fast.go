package templating

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/apply_template/vfile"
)

// FastEngine renders templates with valyala/fasttemplate.
// Tag names are dotted paths into the context. Parsed
// templates are cached by locator.
type FastEngine struct {
	Loader   Loader
	StartTag string
	EndTag   string

	// KeepUnknown writes unresolved tags back verbatim
	// instead of dropping them.
	KeepUnknown bool

	mu    sync.Mutex
	cache map[string]*fasttemplate.Template
}

// Render implements Engine.
func (en *FastEngine) Render(
	ctx context.Context,
	locator string,
	data map[string]interface{},
) (string, error) {
	const errCtx = "rendering fasttemplate"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := en.template(locator)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	startTag, endTag := en.tags()

	out, err := tpl.ExecuteFuncStringWithErr(
		func(w io.Writer, tag string) (int, error) {
			val, ok := vfile.LookupPath(
				data, strings.TrimSpace(tag),
			)
			if !ok {
				if en.KeepUnknown {
					return io.WriteString(
						w, startTag+tag+endTag,
					)
				}

				return 0, nil
			}

			txt, err := Stringify(val)
			if err != nil {
				return 0, fmt.Errorf("tag %q: %w", tag, err)
			}

			return io.WriteString(w, txt)
		},
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w", errCtx, locator, err,
		)
	}

	return out, nil
}

// tags returns the configured start/end tags, falling
// back to double-brace defaults.
func (en *FastEngine) tags() (string, string) {
	startTag := en.StartTag
	if startTag == "" {
		startTag = "{{"
	}

	endTag := en.EndTag
	if endTag == "" {
		endTag = "}}"
	}

	return startTag, endTag
}

func (en *FastEngine) template(
	locator string,
) (*fasttemplate.Template, error) {
	en.mu.Lock()
	defer en.mu.Unlock()

	if tpl, ok := en.cache[locator]; ok {
		return tpl, nil
	}

	body, err := en.Loader.Load(locator)
	if err != nil {
		return nil, err
	}

	startTag, endTag := en.tags()

	tpl, err := fasttemplate.NewTemplate(body, startTag, endTag)
	if err != nil {
		return nil, fmt.Errorf(
			"parsing template %s: %w", locator, err,
		)
	}

	if en.cache == nil {
		en.cache = make(map[string]*fasttemplate.Template)
	}

	en.cache[locator] = tpl

	return tpl, nil
}
