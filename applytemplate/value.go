package applytemplate

import (
	"github.com/byte4ever/apply_template/vfile"
)

// Value is either a static T or a function computing T
// from the context and item being rendered. The zero
// Value is unset.
type Value[T any] struct {
	static T
	fn     func(Context, *vfile.Item) (T, error)
	set    bool
}

// Static returns a Value that always resolves to val.
func Static[T any](val T) Value[T] {
	return Value[T]{static: val, set: true}
}

// Computed returns a Value resolved by calling fn once per
// item. A nil fn yields an unset Value.
func Computed[T any](
	fn func(Context, *vfile.Item) (T, error),
) Value[T] {
	if fn == nil {
		return Value[T]{}
	}

	return Value[T]{fn: fn, set: true}
}

// ContextFunc adapts a user context function, which only
// sees the item, into a Computed Value.
func ContextFunc(
	fn func(*vfile.Item) (map[string]interface{}, error),
) Value[map[string]interface{}] {
	if fn == nil {
		return Value[map[string]interface{}]{}
	}

	return Computed(func(
		_ Context,
		it *vfile.Item,
	) (map[string]interface{}, error) {
		return fn(it)
	})
}

// IsSet reports whether the Value was configured.
func (v Value[T]) IsSet() bool {
	return v.set
}

// IsComputed reports whether the Value is a function.
func (v Value[T]) IsComputed() bool {
	return v.fn != nil
}

// resolve returns the static value or calls the function
// with the context and item. An unset Value yields the
// zero T.
func resolve[T any](
	v Value[T],
	ctx Context,
	it *vfile.Item,
) (T, error) {
	if v.fn == nil {
		return v.static, nil
	}

	return v.fn(ctx, it)
}
