//go:build unix

package dump1030

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps path read only.  The returned function unmaps it.
func mapFile(path string) ([]byte, func(), error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var info, statErr = f.Stat()
	if statErr != nil {
		return nil, nil, statErr
	}

	if info.Size() == 0 {
		return []byte{}, func() {}, nil
	}

	var data, mmapErr = unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE) //nolint:gosec
	if mmapErr != nil {
		return nil, nil, mmapErr
	}

	return data, func() { _ = unix.Munmap(data) }, nil
}
