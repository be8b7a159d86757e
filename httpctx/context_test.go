package httpctx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deixis/ctx"
	"github.com/deixis/ctx/httpctx"
)

func TestInjectExtract(t *testing.T) {
	chain, tr := ctx.NewTransitWithContext(ctx.Background())
	chain = ctx.WithShipment(chain, "lang", "en")

	h := http.Header{}
	if err := httpctx.Inject(chain, h); err != nil {
		t.Fatal(err)
	}
	if h.Get("Context-Transit") == "" {
		t.Fatal("expect a transit header")
	}

	got, err := httpctx.Extract(h)
	if err != nil {
		t.Fatal(err)
	}
	gotTr := ctx.TransitFromContext(got)
	if gotTr == nil {
		t.Fatal("expect a transit on the extracted context")
	}
	if gotTr.UUID() != tr.UUID() {
		t.Errorf("expect transit UUID %s, but got %s", tr.UUID(), gotTr.UUID())
	}
	if v, ok := ctx.ShipmentFromContext(got, "lang"); !ok || v != "en" {
		t.Errorf("expect shipment lang=en, but got %q (%t)", v, ok)
	}
}

func TestInjectExtractShipmentShadowing(t *testing.T) {
	chain := ctx.WithShipment(ctx.Background(), "lang", "en")
	chain = ctx.WithShipment(chain, "lang", "fr")

	h := http.Header{}
	if err := httpctx.Inject(chain, h); err != nil {
		t.Fatal(err)
	}
	got, err := httpctx.Extract(h)
	if err != nil {
		t.Fatal(err)
	}

	// The most recent value must still win after the hop
	v, ok := ctx.ShipmentFromContext(got, "lang")
	if !ok {
		t.Fatal("expect to find shipment lang")
	}
	if v != "fr" {
		t.Errorf("expect the most recent value fr, but got %s", v)
	}
}

func TestExtractWithoutHeaders(t *testing.T) {
	got, err := httpctx.Extract(http.Header{})
	if err != nil {
		t.Fatal(err)
	}
	if tr := ctx.TransitFromContext(got); tr == nil {
		t.Fatal("expect a new transit when the caller sends none")
	}
}

func TestMiddleware(t *testing.T) {
	chain, tr := ctx.NewTransitWithContext(ctx.Background())
	chain = ctx.WithShipment(chain, "flag", "beta")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := httpctx.Inject(chain, req.Header); err != nil {
		t.Fatal(err)
	}

	var handled bool
	handler := httpctx.Middleware(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			handled = true
			c := ctx.FromContext(r.Context())
			gotTr := ctx.TransitFromContext(c)
			if gotTr == nil {
				t.Fatal("expect a transit on the request context")
			}
			if gotTr.UUID() != tr.UUID() {
				t.Errorf("expect transit UUID %s, but got %s", tr.UUID(), gotTr.UUID())
			}
			if v, ok := ctx.ShipmentFromContext(c, "flag"); !ok || v != "beta" {
				t.Errorf("expect shipment flag=beta, but got %q (%t)", v, ok)
			}
		},
	))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !handled {
		t.Fatal("expect the handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expect status 200, but got %d", rec.Code)
	}
}

func TestMiddlewareRejectsMalformedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Context-Shipment", "no-separator")

	handler := httpctx.Middleware(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("expect the handler not to be called")
		},
	))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expect status 400, but got %d", rec.Code)
	}
}
