package dump1030

import "context"

// Block is one raw I/Q buffer on its way from acquisition to analysis.
// Whoever receives it owns it until Release is called.
type Block struct {
	Data    []byte
	release func()
}

func NewBlock(data []byte) Block {
	return Block{Data: data, release: nil}
}

func (b Block) Release() {
	if b.release != nil {
		b.release()
	}
}

// Source is the acquisition side of the pipeline.  Stream sends blocks on out until
// the input is exhausted, a single block has been sent when not running
// continuously, or ctx is done.  It must not close out.
type Source interface {
	Stream(ctx context.Context, out chan<- Block) error
}

func sendBlock(ctx context.Context, out chan<- Block, b Block) error {
	select {
	case out <- b:
		return nil
	case <-ctx.Done():
		b.Release()

		return ctx.Err()
	}
}
