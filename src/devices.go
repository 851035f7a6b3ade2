package dump1030

import (
	"fmt"
	"io"
)

type USBDevice struct {
	Vendor  string
	Product string
	Serial  string
	Devnode string
}

// printDevices writes the list shown when the device can't be opened.  The dongle
// is picked by the rtl_tcp server, selected is only the index given to --device.
func printDevices(w io.Writer, devs []USBDevice, selected int) {
	if len(devs) == 0 {
		fmt.Fprintf(w, "%s\n", ErrNoDevices)

		return
	}

	fmt.Fprintf(w, "Found %d device(s):\n", len(devs))

	for i, d := range devs {
		var line = fmt.Sprintf("%d: %s, %s, SN: %s", i, d.Vendor, d.Product, d.Serial)

		if d.Devnode != "" {
			line += " at " + d.Devnode
		}

		if i == selected {
			line += " (currently selected)"
		}

		fmt.Fprintf(w, "%s\n", line)
	}

	fmt.Fprintf(w, "Start rtl_tcp with -d N to pick one of these.\n")
}
