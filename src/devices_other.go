//go:build !linux

package dump1030

func ListDevices() ([]USBDevice, error) {
	return nil, nil
}
