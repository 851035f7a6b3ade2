package dump1030

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PrintDevices(t *testing.T) {
	var devs = []USBDevice{
		{Vendor: "Realtek", Product: "RTL2838UHIDIR", Serial: "00000001", Devnode: "/dev/bus/usb/001/004"},
		{Vendor: "Realtek", Product: "RTL2832U", Serial: "00001030", Devnode: "/dev/bus/usb/001/005"},
	}

	var buf bytes.Buffer
	printDevices(&buf, devs, 1)

	assert.Equal(t,
		"Found 2 device(s):\n"+
			"0: Realtek, RTL2838UHIDIR, SN: 00000001 at /dev/bus/usb/001/004\n"+
			"1: Realtek, RTL2832U, SN: 00001030 at /dev/bus/usb/001/005 (currently selected)\n"+
			"Start rtl_tcp with -d N to pick one of these.\n",
		buf.String())

	buf.Reset()
	printDevices(&buf, []USBDevice{{Vendor: "Realtek", Product: "RTL2832U", Serial: "1", Devnode: ""}}, 3)
	assert.Equal(t, "Found 1 device(s):\n0: Realtek, RTL2832U, SN: 1\nStart rtl_tcp with -d N to pick one of these.\n", buf.String())

	buf.Reset()
	printDevices(&buf, nil, 0)
	assert.Equal(t, ErrNoDevices.Error()+"\n", buf.String())
}

func Test_PrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, false)

	assert.True(t, strings.HasPrefix(buf.String(), "dump1030 - Version "))
	assert.NotContains(t, buf.String(), "BuildInfo")

	buf.Reset()
	printVersion(&buf, true)
	assert.Contains(t, buf.String(), "BuildInfo")
}

func Test_GetBuildSettingOrDefaultNil(t *testing.T) {
	assert.Equal(t, "fallback", getBuildSettingOrDefault(nil, "vcs.time", "fallback"))
}

func Test_DNSSDDefaultName(t *testing.T) {
	var name = dnsSDDefaultName()

	assert.True(t, strings.HasPrefix(name, "dump1030"))
	assert.NotContains(t, strings.TrimPrefix(name, "dump1030 on "), ".")
}

func Test_LogInit(t *testing.T) {
	assert.NoError(t, logInit("debug"))
	assert.NoError(t, logInit("info"))
	assert.Error(t, logInit("shouty"))
}
