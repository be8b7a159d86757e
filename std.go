package ctx

import (
	"context"
	"time"
)

type chainKey struct{}

var activeChainKey = chainKey{}

// WithContext returns a copy of the standard context parent carrying c.
// It is the bridge used to thread a value chain through APIs that only
// accept a context.Context.
func WithContext(parent context.Context, c Context) context.Context {
	return context.WithValue(parent, activeChainKey, c)
}

// FromContext returns the Context carried by the standard context, or
// Wrap(stdctx) when none has been attached with WithContext.
func FromContext(stdctx context.Context) Context {
	val := stdctx.Value(activeChainKey)
	if c, ok := val.(Context); ok {
		return c
	}
	return Wrap(stdctx)
}

// Wrap adapts a standard context to the Context capability. The
// deadline comes from the standard context. Typed lookups resolve
// against the chain attached with WithContext, if any, and report
// absence otherwise.
func Wrap(stdctx context.Context) Context {
	return stdCtx{stdctx}
}

type stdCtx struct {
	ctx context.Context
}

func (c stdCtx) Deadline() (time.Time, bool) {
	return c.ctx.Deadline()
}

func (c stdCtx) Value(target interface{}) bool {
	val := c.ctx.Value(activeChainKey)
	if chain, ok := val.(Context); ok {
		return chain.Value(target)
	}
	return false
}
