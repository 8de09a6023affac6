package selection

import "elysian-scribe/pkg/geometry"

// Mode is the interaction state of the image view.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSelectingRectangle
	ModeStraightening
)

func (m Mode) String() string {
	switch m {
	case ModeSelectingRectangle:
		return "Selecting"
	case ModeStraightening:
		return "Straightening"
	default:
		return "Idle"
	}
}

// Machine tracks the rectangle drag and the two-point straightening gesture.
// Only one of them is in progress at a time.
type Machine struct {
	mode    Mode
	drag    Selection
	points  []geometry.Point2D
	current *Rect
}

// NewMachine returns an idle machine.
func NewMachine() *Machine {
	return &Machine{}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Press starts a rectangle drag, or in straightening mode records a point.
// When the second straightening point is recorded it returns the line angle
// in degrees with done=true and the machine is idle again.
func (m *Machine) Press(p geometry.Point2D) (angle float64, done bool) {
	if m.mode == ModeStraightening {
		m.points = append(m.points, p)
		if len(m.points) < 2 {
			return 0, false
		}
		angle = StraightenAngle(m.points[0], m.points[1])
		m.points = nil
		m.mode = ModeIdle
		return angle, true
	}
	m.mode = ModeSelectingRectangle
	m.drag = Selection{Start: p, End: p}
	m.current = nil
	return 0, false
}

// Drag updates the free corner of an in-progress rectangle.
func (m *Machine) Drag(p geometry.Point2D) {
	if m.mode != ModeSelectingRectangle {
		return
	}
	m.drag.End = p
}

// Release finishes the rectangle drag. The normalized rectangle is kept as
// the current selection when it is valid.
func (m *Machine) Release(p geometry.Point2D) (Rect, error) {
	if m.mode != ModeSelectingRectangle {
		return Rect{}, ErrInvalidSelection
	}
	m.drag.End = p
	m.mode = ModeIdle
	r, err := m.drag.Normalize()
	if err != nil {
		return Rect{}, err
	}
	m.current = &r
	return r, nil
}

// ToggleStraighten enters straightening mode, dropping any in-progress
// rectangle and the current selection, or leaves it, dropping recorded points.
func (m *Machine) ToggleStraighten() {
	if m.mode == ModeStraightening {
		m.mode = ModeIdle
		m.points = nil
		return
	}
	m.mode = ModeStraightening
	m.drag = Selection{}
	m.points = nil
	m.current = nil
}

// Reset returns to idle and forgets everything.
func (m *Machine) Reset() {
	*m = Machine{}
}

// ClearSelection forgets the current selection.
func (m *Machine) ClearSelection() {
	m.current = nil
}

// Current returns the last completed selection.
func (m *Machine) Current() (Rect, bool) {
	if m.current == nil {
		return Rect{}, false
	}
	return *m.current, true
}

// InProgress returns the rectangle being dragged, unnormalized.
func (m *Machine) InProgress() (Selection, bool) {
	return m.drag, m.mode == ModeSelectingRectangle
}

// Points returns the straightening points recorded so far.
func (m *Machine) Points() []geometry.Point2D {
	return append([]geometry.Point2D(nil), m.points...)
}
