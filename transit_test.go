package ctx_test

import (
	"strings"
	"testing"

	"github.com/deixis/ctx"
)

func TestTransit(t *testing.T) {
	c, tr := ctx.NewTransitWithContext(ctx.Background())

	if tr.UUID() == "" {
		t.Fatal("expect a transit UUID")
	}
	if len(tr.ShortID()) != 8 {
		t.Errorf("expect a short ID of 8 chars, but got %s", tr.ShortID())
	}
	got := ctx.TransitFromContext(c)
	if got == nil {
		t.Fatal("expect to find the transit on the context")
	}
	if got.UUID() != tr.UUID() {
		t.Errorf("expect UUID %s, but got %s", tr.UUID(), got.UUID())
	}
}

func TestTransitAbsent(t *testing.T) {
	if tr := ctx.TransitFromContext(ctx.Background()); tr != nil {
		t.Errorf("expect no transit on an empty context, but got %s", tr.UUID())
	}
}

func TestTransitTick(t *testing.T) {
	tr := ctx.NewTransit()

	if n := tr.Tick(); n != 1 {
		t.Errorf("expect first tick to be 1, but got %d", n)
	}
	if n := tr.Tick(); n != 2 {
		t.Errorf("expect second tick to be 2, but got %d", n)
	}
	if s := tr.Step().String(); s != "2" {
		t.Errorf("expect step 2, but got %s", s)
	}
}

func TestTransitTransmit(t *testing.T) {
	tr := ctx.NewTransit()
	tr.Tick()
	tr.Tick()

	child := tr.Transmit()
	if child.UUID() != tr.UUID() {
		t.Errorf("expect child to keep UUID %s, but got %s", tr.UUID(), child.UUID())
	}
	child.Tick()
	if s := child.Step().String(); s != "3_1" {
		t.Errorf("expect child step 3_1, but got %s", s)
	}
}

func TestTransitText(t *testing.T) {
	tr := ctx.NewTransit()
	tr.Tick()

	text, err := tr.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(text), tr.UUID()+"#") {
		t.Errorf("expect text form to start with the UUID, but got %s", text)
	}

	out := ctx.NewTransit()
	if err := out.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if out.UUID() != tr.UUID() {
		t.Errorf("expect UUID %s, but got %s", tr.UUID(), out.UUID())
	}
	if out.Step().String() != tr.Step().String() {
		t.Errorf("expect step %s, but got %s", tr.Step(), out.Step())
	}
}

func TestTransitTextInvalid(t *testing.T) {
	for _, text := range []string{"", "no-separator", "#", "uuid#NaN"} {
		tr := ctx.NewTransit()
		if err := tr.UnmarshalText([]byte(text)); err == nil {
			t.Errorf("expect %q to be rejected", text)
		}
	}
}
