//go:build linux

package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	List RTL2832U based dongles plugged into this machine.
 *
 * Description:	Walk the usb subsystem and pick out the Realtek vendor
 *		and product ids used by the common DVB-T sticks.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"

	"github.com/jochenvg/go-udev"
)

const realtekVendor = "0bda"

var rtlProducts = map[string]bool{
	"2832": true,
	"2838": true,
}

func ListDevices() ([]USBDevice, error) {
	var u udev.Udev

	var e = u.NewEnumerate()

	if err := e.AddMatchSubsystem("usb"); err != nil {
		return nil, fmt.Errorf("udev: %w", err)
	}

	if err := e.AddMatchSysattr("idVendor", realtekVendor); err != nil {
		return nil, fmt.Errorf("udev: %w", err)
	}

	var devs, err = e.Devices()
	if err != nil {
		return nil, fmt.Errorf("udev: %w", err)
	}

	var found []USBDevice

	for _, d := range devs {
		if !rtlProducts[d.SysattrValue("idProduct")] {
			continue
		}

		found = append(found, USBDevice{
			Vendor:  d.SysattrValue("manufacturer"),
			Product: d.SysattrValue("product"),
			Serial:  d.SysattrValue("serial"),
			Devnode: d.Devnode(),
		})
	}

	return found, nil
}
