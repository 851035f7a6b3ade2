package dump1030

import (
	"fmt"
	"io"
)

// amplitudeDump prints 16 amplitudes per line, each line starting with the
// index of its first sample.
func amplitudeDump(w io.Writer, mag []uint8) {
	var offset = 0

	for len(mag) > 0 {
		var n = min(len(mag), 16)

		fmt.Fprintf(w, "  %08d: ", offset)

		for i := range n {
			fmt.Fprintf(w, " %3d", mag[i])
		}

		fmt.Fprintf(w, "\n")

		mag = mag[n:]
		offset += n
	}
}
