// Package grpcctx propagates value-chain contexts over gRPC. Transits
// and shipments travel as textual metadata; everything else attached
// to a chain stays within the process.
package grpcctx

import (
	"context"
	"strings"

	"github.com/deixis/ctx"
	"github.com/deixis/spine/log"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	transitMD  = "context-transit"
	shipmentMD = "context-shipment"
)

// ErrInvalidShipment occurs when an inbound shipment metadata entry is
// not a key=value pair
var ErrInvalidShipment = errors.New("invalid shipment metadata entry")

// EmbedContext copies the transit and the shipments carried by the
// chain attached to stdctx onto the outgoing gRPC metadata.
func EmbedContext(stdctx context.Context) (context.Context, error) {
	c := ctx.FromContext(stdctx)

	var kv []string
	if tr := ctx.TransitFromContext(c); tr != nil {
		data, err := tr.Transmit().MarshalText()
		if err != nil {
			return nil, errors.Wrap(err, "cannot marshal transit")
		}
		kv = append(kv, transitMD, string(data))
	}
	ctx.ShipmentRange(c, func(key, val string) bool {
		kv = append(kv, shipmentMD, key+"="+val)
		return true
	})
	if len(kv) == 0 {
		return stdctx, nil
	}
	return metadata.AppendToOutgoingContext(stdctx, kv...), nil
}

// ExtractContext builds a value chain from the incoming gRPC metadata
// and attaches it to stdctx. A new transit is created when the caller
// did not send one.
func ExtractContext(stdctx context.Context) (context.Context, error) {
	c := ctx.FromContext(stdctx)

	md, ok := metadata.FromIncomingContext(stdctx)
	if !ok {
		c, tr := ctx.NewTransitWithContext(c)
		ctx.Trace(c, "grpc.transit.new", "New transit", log.String("id", tr.UUID()))
		return ctx.WithContext(stdctx, c), nil
	}

	if data, ok := md[transitMD]; ok {
		tr := ctx.NewTransit()
		if err := tr.UnmarshalText([]byte(data[0])); err != nil {
			return nil, err
		}
		c = ctx.TransitWithContext(c, tr)
		ctx.Trace(c, "grpc.transit.extract", "Extract transit", log.String("id", tr.UUID()))
	} else {
		var tr ctx.Transit
		c, tr = ctx.NewTransitWithContext(c)
		ctx.Trace(c, "grpc.transit.new", "New transit", log.String("id", tr.UUID()))
	}

	// Entries arrive newest-first; re-attach in reverse so the newest
	// shipment keeps shadowing older ones for the same key.
	entries := md[shipmentMD]
	for i := len(entries) - 1; i >= 0; i-- {
		key, val, ok := strings.Cut(entries[i], "=")
		if !ok {
			return nil, errors.Wrapf(ErrInvalidShipment, "entry %q", entries[i])
		}
		c = ctx.WithShipment(c, key, val)
	}

	return ctx.WithContext(stdctx, c), nil
}

// UnaryClientInterceptor embeds the calling context onto the outgoing
// metadata of every unary RPC.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		stdctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		stdctx, err := EmbedContext(stdctx)
		if err != nil {
			return err
		}
		return invoker(stdctx, method, req, reply, cc, opts...)
	}
}

// UnaryServerInterceptor extracts the inbound context before calling
// the handler.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		stdctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		stdctx, err := ExtractContext(stdctx)
		if err != nil {
			return nil, err
		}
		return handler(stdctx, req)
	}
}
