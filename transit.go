package ctx

import (
	"bytes"
	"encoding"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// A Transit identifies a request as it travels across processes and
// API boundaries. It carries a UUID shared by every hop and a stepper
// that orders the events recorded on the way.
type Transit interface {
	encoding.TextMarshaler
	encoding.TextUnmarshaler

	// UUID returns the transit UUID
	UUID() string
	// ShortID returns a partial representation of the transit ID
	ShortID() string
	// Tick increments the stepper
	Tick() uint
	// Step returns the current step
	Step() Step
	// Transmit returns a new instance of Transit that can be serialised
	// onto an outbound request
	Transmit() Transit
}

// A Step is the position of a transit within its request tree.
type Step interface {
	fmt.Stringer
}

// NewTransit returns a Transit with a fresh UUID and a zeroed stepper.
func NewTransit() Transit {
	return &transit{
		id:      uuid.New().String(),
		stepper: newStepper(),
	}
}

// TransitWithContext attaches tr to parent.
func TransitWithContext(parent Context, tr Transit) Context {
	return WithValue(parent, tr)
}

// NewTransitWithContext attaches a new Transit to parent.
func NewTransitWithContext(parent Context) (Context, Transit) {
	tr := NewTransit()
	return TransitWithContext(parent, tr), tr
}

// TransitFromContext extracts the Transit attached to c and returns
// nil when there is none.
func TransitFromContext(c Context) Transit {
	tr, ok := Value[Transit](c)
	if !ok {
		return nil
	}
	return tr
}

type transit struct {
	id      string
	stepper *stepper
}

func (t *transit) UUID() string {
	if t == nil {
		return ""
	}
	return t.id
}

func (t *transit) ShortID() string {
	if t == nil || len(t.id) < 8 {
		return ""
	}
	return t.id[:8]
}

func (t *transit) Tick() uint {
	return t.stepper.Inc()
}

func (t *transit) Step() Step {
	return t.stepper
}

func (t *transit) Transmit() Transit {
	return &transit{
		id:      t.id,
		stepper: t.stepper.Child(),
	}
}

var (
	transitSep = []byte("#")

	// ErrInvalidTransitText occurs when UnmarshalText is called on
	// Transit with an invalid textual representation
	ErrInvalidTransitText = errors.New("invalid transit textual representation")
)

func (t *transit) MarshalText() ([]byte, error) {
	step, err := t.stepper.MarshalText()
	if err != nil {
		return nil, err
	}
	return bytes.Join([][]byte{[]byte(t.id), step}, transitSep), nil
}

func (t *transit) UnmarshalText(text []byte) error {
	r := bytes.SplitN(text, transitSep, 2)
	if len(r) < 2 || len(r[0]) == 0 {
		return ErrInvalidTransitText
	}
	t.id = string(r[0])
	t.stepper = newStepper()
	if err := t.stepper.UnmarshalText(r[1]); err != nil {
		return ErrInvalidTransitText
	}
	return nil
}

const stepperSep = "_"

// stepper counts the events recorded on a transit. Each Transmit
// derives a child stepper, so steps read like "3_12_1": the 12th event
// of the hop spawned by the 3rd event of the root hop.
type stepper struct {
	mu sync.Mutex

	steps []uint32
	depth int
}

func newStepper() *stepper {
	return &stepper{steps: []uint32{0}}
}

// Child increments the current counter and returns a stepper one level
// deeper, anchored at the current position.
func (s *stepper) Child() *stepper {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps[s.depth]++
	steps := make([]uint32, len(s.steps)+1)
	copy(steps, s.steps)
	return &stepper{
		steps: steps,
		depth: s.depth + 1,
	}
}

// Inc increments the current counter
func (s *stepper) Inc() uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps[s.depth]++
	return uint(s.steps[s.depth])
}

func (s *stepper) String() string {
	t, _ := s.MarshalText()
	return string(t)
}

// MarshalText implements encoding.TextMarshaler
func (s *stepper) MarshalText() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make([]string, len(s.steps))
	for i, step := range s.steps {
		parts[i] = strconv.FormatUint(uint64(step), 10)
	}
	return []byte(strings.Join(parts, stepperSep)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *stepper) UnmarshalText(text []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := strings.Split(string(text), stepperSep)
	steps := make([]uint32, len(values))
	for i, v := range values {
		step, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return err
		}
		steps[i] = uint32(step)
	}
	s.steps = steps
	s.depth = len(steps) - 1
	return nil
}
