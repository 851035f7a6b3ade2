package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Read I/Q samples from a capture file.
 *
 * Description:	Files made with rtl_sdr are raw interleaved I/Q bytes.
 *		Names ending in .zst are decompressed on the fly.
 *
 *		Without a buffer size the whole file is one block,
 *		memory mapped where the platform allows.  With a size
 *		the file is read in blocks of that many bytes, just
 *		one unless running continuously.  A short last block
 *		only holds the bytes actually read.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type FileSource struct {
	Path       string
	Size       int // bytes per block, 0 for the whole file
	Continuous bool
}

func (s *FileSource) compressed() bool {
	return strings.HasSuffix(s.Path, ".zst")
}

func (s *FileSource) Stream(ctx context.Context, out chan<- Block) error {
	if s.Size == 0 && !s.compressed() {
		var data, release, err = mapFile(s.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.Path, err)
		}

		logger.Debug("mapped capture", "path", s.Path, "bytes", len(data))

		return sendBlock(ctx, out, Block{Data: data, release: release})
	}

	var f, openErr = os.Open(s.Path)
	if openErr != nil {
		return fmt.Errorf("reading %s: %w", s.Path, openErr)
	}
	defer f.Close()

	var r io.Reader = f

	if s.compressed() {
		var zr, zErr = zstd.NewReader(f)
		if zErr != nil {
			return fmt.Errorf("reading %s: %w", s.Path, zErr)
		}
		defer zr.Close()

		r = zr
	}

	if s.Size == 0 {
		var data, err = io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.Path, err)
		}

		return sendBlock(ctx, out, NewBlock(data))
	}

	return streamBlocks(ctx, r, s.Size, s.Continuous, out)
}

// streamBlocks cuts r into blocks of size bytes.
func streamBlocks(ctx context.Context, r io.Reader, size int, continuous bool, out chan<- Block) error {
	for {
		var buf = make([]byte, size)

		var n, err = io.ReadFull(r, buf)
		var eof = errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)

		if err != nil && !eof {
			return fmt.Errorf("reading samples: %w", err)
		}

		// Whole I/Q pairs only.
		n &^= 1

		if n == 0 {
			return nil
		}

		if n < size {
			logger.Info("short read, using what was there", "wanted", size, "got", n)
		}

		if err := sendBlock(ctx, out, NewBlock(buf[:n])); err != nil {
			return err
		}

		if !continuous || eof {
			return nil
		}
	}
}
