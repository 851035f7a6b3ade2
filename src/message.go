package dump1030

import "fmt"

type MessageKind int

const (
	ModeA MessageKind = iota + 1
	ModeC
	ModeS
)

func (k MessageKind) String() string {
	switch k {
	case ModeA:
		return "Mode A"
	case ModeC:
		return "Mode C"
	case ModeS:
		return "Mode S"
	default:
		return fmt.Sprintf("MessageKind(%d)", int(k))
	}
}

// Variant only means something for Mode A and Mode C.  Mode S messages are always Plain.
type Variant int

const (
	Plain Variant = iota
	AllCall
	AllCallCompat
)

func (v Variant) String() string {
	switch v {
	case Plain:
		return "Plain"
	case AllCall:
		return "All-Call"
	case AllCallCompat:
		return "All-Call (Compatibility Mode)"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Sample offsets, relative to the start of P1, of the P3 pulse pair.
const (
	modeAP3 = 20
	modeCP3 = 52
)

// Distance from P3 to the first sample where a P4 pulse may start.
const p4AfterP3 = 5

// Mode S preamble window, P1 through the sample after P3.
const modeSWindow = 9

type Message struct {
	Kind    MessageKind
	Variant Variant
	Start   int // index into the amplitude sequence
}

func (m Message) OrderCode() OrderCode {
	if m.Kind == ModeS {
		return OrderModeS
	}

	var typeCode = 1
	if m.Kind == ModeC {
		typeCode = 2
	}

	switch m.Variant {
	case AllCall:
		return OrderCode(20 + typeCode)
	case AllCallCompat:
		return OrderCode(30 + typeCode)
	default:
		return OrderCode(10 + typeCode)
	}
}

// Skip is how far the scan cursor moves past Start once this message is accepted.
func (m Message) Skip() int {
	switch m.Kind {
	case ModeS:
		return 49
	case ModeA:
		switch m.Variant {
		case AllCall:
			return 27
		case AllCallCompat:
			return 29
		default:
			return 23
		}
	default:
		switch m.Variant {
		case AllCall:
			return 59
		case AllCallCompat:
			return 61
		default:
			return 56
		}
	}
}

func (m Message) p3() int {
	if m.Kind == ModeC {
		return modeCP3
	}

	return modeAP3
}

// Window is the number of samples from Start shown when echoing the message.
func (m Message) Window() int {
	if m.Kind == ModeS {
		return modeSWindow
	}

	return m.p3() + p4AfterP3 + 5
}

func (m Message) Label() string {
	if m.Kind == ModeS || m.Variant == Plain {
		return m.Kind.String()
	}

	return m.Kind.String() + " " + m.Variant.String()
}
