//go:build !unix

package dump1030

import "os"

func mapFile(path string) ([]byte, func(), error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	return data, func() {}, nil
}
