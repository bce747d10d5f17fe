package vfile

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// Property names understood by Prop.
const (
	PropPath     = "path"
	PropBase     = "base"
	PropCwd      = "cwd"
	PropRelative = "relative"
	PropBasename = "basename"
	PropExtname  = "extname"
	PropStem     = "stem"
	PropDirname  = "dirname"
	PropData     = "data"
	PropContents = "contents"
	PropIsBuffer = "isBuffer"
	PropIsStream = "isStream"
)

var knownProps = map[string]struct{}{
	PropPath:     {},
	PropBase:     {},
	PropCwd:      {},
	PropRelative: {},
	PropBasename: {},
	PropExtname:  {},
	PropStem:     {},
	PropDirname:  {},
	PropData:     {},
	PropContents: {},
	PropIsBuffer: {},
	PropIsStream: {},
}

// IsProp reports whether name is a property Prop can
// resolve.
func IsProp(name string) bool {
	_, ok := knownProps[name]

	return ok
}

// Item is a file flowing through the pipeline. At most
// one of the buffered and streamed payloads is set.
type Item struct {
	Path string
	Base string
	Cwd  string
	Data map[string]interface{}

	buffer   []byte
	stream   io.Reader
	buffered bool
}

// NewBuffer returns an Item holding contents in memory.
func NewBuffer(path string, contents []byte) *Item {
	it := &Item{Path: path}
	it.SetBuffer(contents)

	return it
}

// NewStream returns an Item whose contents are read from
// r on demand.
func NewStream(path string, r io.Reader) *Item {
	it := &Item{Path: path}
	it.SetStream(r)

	return it
}

// IsBuffer reports whether the payload is buffered.
func (it *Item) IsBuffer() bool {
	return it.buffered
}

// IsStream reports whether the payload is streamed.
func (it *Item) IsStream() bool {
	return !it.buffered && it.stream != nil
}

// IsNull reports whether the item carries no payload.
func (it *Item) IsNull() bool {
	return !it.IsBuffer() && !it.IsStream()
}

// Buffer returns the buffered payload, or nil for
// streamed items.
func (it *Item) Buffer() []byte {
	if !it.buffered {
		return nil
	}

	return it.buffer
}

// Stream returns the streamed payload, or nil for
// buffered items.
func (it *Item) Stream() io.Reader {
	if it.buffered {
		return nil
	}

	return it.stream
}

// SetBuffer replaces the payload with an in-memory one.
func (it *Item) SetBuffer(contents []byte) {
	if contents == nil {
		contents = []byte{}
	}

	it.buffer = contents
	it.stream = nil
	it.buffered = true
}

// SetStream replaces the payload with a streamed one. A
// nil reader turns the item into a null item.
func (it *Item) SetStream(r io.Reader) {
	it.buffer = nil
	it.stream = r
	it.buffered = false
}

// Text returns the payload as a string. A streamed
// payload is drained and replaced by a reader over the
// same bytes, so the item reads the same afterwards.
func (it *Item) Text() (string, error) {
	const errCtx = "reading contents"

	switch {
	case it.IsBuffer():
		return string(it.buffer), nil
	case it.IsStream():
		by, err := io.ReadAll(it.stream)
		if err != nil {
			return "", fmt.Errorf(
				"%s: %s: %w", errCtx, it.Path, err,
			)
		}

		it.stream = bytes.NewReader(by)

		return string(by), nil
	default:
		return "", nil
	}
}

// Relative returns Path relative to Base. When Base is
// empty or unrelated, Path is returned unchanged.
func (it *Item) Relative() string {
	if it.Base == "" {
		return it.Path
	}

	rel, err := filepath.Rel(it.Base, it.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return it.Path
	}

	return rel
}

// Prop returns the named property. The second result is
// false when name is not a known property, or when it is
// "contents" and the stream cannot be read.
func (it *Item) Prop(name string) (interface{}, bool) {
	switch name {
	case PropPath:
		return it.Path, true
	case PropBase:
		return it.Base, true
	case PropCwd:
		return it.Cwd, true
	case PropRelative:
		return it.Relative(), true
	case PropBasename:
		return filepath.Base(it.Path), true
	case PropExtname:
		return filepath.Ext(it.Path), true
	case PropStem:
		base := filepath.Base(it.Path)

		return strings.TrimSuffix(base, filepath.Ext(base)), true
	case PropDirname:
		return filepath.Dir(it.Path), true
	case PropData:
		return it.Data, true
	case PropContents:
		txt, err := it.Text()
		if err != nil {
			return nil, false
		}

		return txt, true
	case PropIsBuffer:
		return strconv.FormatBool(it.IsBuffer()), true
	case PropIsStream:
		return strconv.FormatBool(it.IsStream()), true
	default:
		return nil, false
	}
}

// Lookup resolves a dotted key such as "path" or
// "data.custom". Keys below "data" walk the metadata map.
func (it *Item) Lookup(key string) (interface{}, bool) {
	head, rest, nested := strings.Cut(key, ".")

	val, ok := it.Prop(head)
	if !ok || !nested {
		return val, ok
	}

	if head != PropData {
		return nil, false
	}

	return LookupPath(it.Data, rest)
}

// String identifies the item by path.
func (it *Item) String() string {
	return fmt.Sprintf("<File %q>", it.Relative())
}

// Looker is implemented by values that resolve dotted keys
// themselves.
type Looker interface {
	Lookup(key string) (interface{}, bool)
}

// LookupPath walks a dotted key through nested maps and
// Looker values.
func LookupPath(
	root interface{},
	key string,
) (interface{}, bool) {
	cur := root

	for key != "" {
		if lk, ok := cur.(Looker); ok {
			return lk.Lookup(key)
		}

		var head string

		head, key, _ = strings.Cut(key, ".")

		switch typed := cur.(type) {
		case map[string]interface{}:
			val, ok := typed[head]
			if !ok {
				return nil, false
			}

			cur = val
		case map[string]string:
			val, ok := typed[head]
			if !ok {
				return nil, false
			}

			cur = val
		default:
			return nil, false
		}
	}

	return cur, true
}
