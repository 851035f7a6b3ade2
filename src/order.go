package dump1030

import "strconv"

// OrderCode is the compact type code logged for every accepted message.
// The tens digit is the variant (1 none, 2 All-Call, 3 compatibility) and
// the units digit the mode (1 A, 2 C).  Mode S is 3.
type OrderCode int

const (
	OrderModeS              OrderCode = 3
	OrderModeA              OrderCode = 11
	OrderModeC              OrderCode = 12
	OrderModeAAllCall       OrderCode = 21
	OrderModeCAllCall       OrderCode = 22
	OrderModeAAllCallCompat OrderCode = 31
	OrderModeCAllCallCompat OrderCode = 32
)

var orderLabels = map[OrderCode]string{
	OrderModeS:              "Mode S message",
	OrderModeA:              "Mode A message",
	OrderModeC:              "Mode C message",
	OrderModeAAllCall:       "Mode A All-Call message",
	OrderModeCAllCall:       "Mode C All-Call message",
	OrderModeAAllCallCompat: "Mode A All-Call (Compatibility Mode) message",
	OrderModeCAllCallCompat: "Mode C All-Call (Compatibility Mode) message",
}

func (c OrderCode) Label() string {
	var l, ok = orderLabels[c]
	if !ok {
		return "Unknown message " + strconv.Itoa(int(c))
	}

	return l
}

// OrderLog records codes in arrival order.
type OrderLog struct {
	codes []OrderCode
}

func (l *OrderLog) Append(c OrderCode) {
	l.codes = append(l.codes, c)
}

func (l *OrderLog) Reset() {
	l.codes = l.codes[:0]
}

func (l *OrderLog) Len() int {
	return len(l.codes)
}

func (l *OrderLog) Codes() []OrderCode {
	return l.codes
}

// Summarize compresses runs of three or more identical codes into
// "N <label>s in a row".  Shorter runs are listed one line per message.
func (l *OrderLog) Summarize() []string {
	var lines []string

	for i := 0; i < len(l.codes); {
		var j = i + 1
		for j < len(l.codes) && l.codes[j] == l.codes[i] {
			j++
		}

		var run = j - i
		var label = l.codes[i].Label()

		if run >= 3 {
			lines = append(lines, strconv.Itoa(run)+" "+label+"s in a row")
		} else {
			for range run {
				lines = append(lines, label)
			}
		}

		i = j
	}

	return lines
}
