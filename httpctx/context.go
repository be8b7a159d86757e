// Package httpctx propagates value-chain contexts over HTTP headers.
package httpctx

import (
	"net/http"
	"strings"

	"github.com/deixis/ctx"
	"github.com/deixis/spine/log"
	"github.com/pkg/errors"
)

const (
	transitHeader  = "Context-Transit"
	shipmentHeader = "Context-Shipment"
)

// ErrInvalidShipment occurs when an inbound shipment header is not a
// key=value pair
var ErrInvalidShipment = errors.New("invalid shipment header")

// Inject writes the transit and the shipments carried by c onto h, so
// that an outbound request propagates them to the next process.
func Inject(c ctx.Context, h http.Header) error {
	if tr := ctx.TransitFromContext(c); tr != nil {
		data, err := tr.Transmit().MarshalText()
		if err != nil {
			return errors.Wrap(err, "cannot marshal transit")
		}
		h.Set(transitHeader, string(data))
	}
	ctx.ShipmentRange(c, func(key, val string) bool {
		h.Add(shipmentHeader, key+"="+val)
		return true
	})
	return nil
}

// Extract builds a value chain from the request headers in h. A new
// transit is created when the caller did not send one.
func Extract(h http.Header) (ctx.Context, error) {
	c := ctx.Background()

	if data := h.Get(transitHeader); data != "" {
		tr := ctx.NewTransit()
		if err := tr.UnmarshalText([]byte(data)); err != nil {
			return nil, err
		}
		c = ctx.TransitWithContext(c, tr)
	} else {
		c, _ = ctx.NewTransitWithContext(c)
	}

	// Headers arrive newest-first; re-attach in reverse so the newest
	// shipment keeps shadowing older ones for the same key.
	entries := h.Values(shipmentHeader)
	for i := len(entries) - 1; i >= 0; i-- {
		key, val, ok := strings.Cut(entries[i], "=")
		if !ok {
			return nil, errors.Wrapf(ErrInvalidShipment, "header %q", entries[i])
		}
		c = ctx.WithShipment(c, key, val)
	}

	return c, nil
}

// Middleware extracts the inbound context from the request headers and
// attaches it to the request context before calling next. Requests
// with malformed context headers are rejected with a 400.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := Extract(r.Header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tr := ctx.TransitFromContext(c)
		ctx.Trace(c, "http.transit", "Inbound transit", log.String("id", tr.UUID()))

		r = r.WithContext(ctx.WithContext(r.Context(), c))
		next.ServeHTTP(w, r)
	})
}
