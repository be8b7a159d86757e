// Package ctx propagates request-scoped values through a chain of
// immutable context nodes. Each node attaches exactly one value to a
// parent context, and lookups resolve by type: the nearest node whose
// stored value has the requested type wins.
//
// Context values should only be used for request-scoped data that
// transits processes and API boundaries, not for passing optional
// parameters to functions.
package ctx

import "time"

// Context carries one typed value per node and an optional deadline.
// A Context is immutable once built and safe for concurrent use; any
// number of lookups may run against the same chain, and copies of a
// Context share the same ancestor chain.
type Context interface {
	// Deadline returns the time after which work done on behalf of this
	// context should be abandoned, when there is one.
	Deadline() (deadline time.Time, ok bool)

	// Value looks up a value by type. `target` must be a non-nil
	// pointer. When this node, or the nearest ancestor, holds a value
	// whose type is exactly the type `target` points to, that value is
	// copied into `target` and Value reports true. Absence is reported
	// as false, never as an error.
	Value(target interface{}) bool
}

// Background returns an empty Context. It has no value, no parent, and
// no deadline. It is the terminal node of every chain.
func Background() Context {
	return background{}
}

type background struct{}

func (background) Deadline() (time.Time, bool) { return time.Time{}, false }

func (background) Value(target interface{}) bool { return false }

// WithValue returns a copy of parent with val associated to it.
//
// It is recommended to use structs as values instead of simple data
// types like strings and ints to be very specific of what result to
// expect when retrieving a value. Having values of the same type among
// the ancestors always resolves to the nearest one.
func WithValue[V any](parent Context, val V) Context {
	return &valueCtx[V]{parent: parent, val: val}
}

// Value retrieves the nearest value of type T from the chain. The
// boolean reports whether any node stored a T.
//
//	a := ctx.WithValue(ctx.Background(), 42)
//	b := ctx.WithValue(a, 1.0)
//	n, ok := ctx.Value[int](b) // 42, true
func Value[T any](c Context) (T, bool) {
	var v T
	ok := c.Value(&v)
	return v, ok
}

// valueCtx attaches a single value of type V to a parent Context. The
// parent reference is shared with the node it came from and never
// changes after construction, so traversal needs no locking.
type valueCtx[V any] struct {
	parent Context
	val    V
}

// Deadline reports no deadline. Deadlines belong to dedicated
// deadline-bearing contexts; a value node contributes none and does
// not delegate to its parent.
func (c *valueCtx[V]) Deadline() (time.Time, bool) {
	return time.Time{}, false
}

func (c *valueCtx[V]) Value(target interface{}) bool {
	if p, ok := target.(*V); ok {
		*p = c.val
		return true
	}
	return c.parent.Value(target)
}
