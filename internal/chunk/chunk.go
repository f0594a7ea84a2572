// Package chunk splits large substrate argument sequences into
// size-bounded sub-requests. Substrate commands have practical
// request-size ceilings: one mega-command for 10^4-10^5 records risks
// failure and latency spikes, while one command per record thrashes
// round trips. Chunking amortizes both.
package chunk

// DefaultSize is the default cap on logical items per chunk.
const DefaultSize = 1000

// Chunker splits ordered argument sequences into chunks whose length is
// always a multiple of the atomic group size, so that logically paired
// arguments (a sorted-set score and its member, a key and its value)
// are never split across two substrate calls.
type Chunker struct {
	size int
}

// New creates a Chunker with the given per-chunk item cap.
// Non-positive sizes fall back to DefaultSize.
func New(size int) Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	return Chunker{size: size}
}

// Size returns the per-chunk item cap.
func (c Chunker) Size() int { return c.size }

// Each invokes fn once per chunk, sequentially and in input order.
// group is the atomic group size: every chunk's length is a multiple
// of it. A group larger than the cap still goes out whole.
func (c Chunker) Each(args []string, group int, fn func(chunk []string) error) error {
	for start, end := 0, 0; start < len(args); start = end {
		end = start + c.step(group)
		if end > len(args) {
			end = len(args)
		}
		if err := fn(args[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Collect invokes fn once per chunk, sequentially, and concatenates the
// ordered replies. Used for read-style calls where the substrate answers
// per argument.
func Collect[R any](c Chunker, args []string, group int, fn func(chunk []string) ([]R, error)) ([]R, error) {
	var out []R
	err := c.Each(args, group, func(chunk []string) error {
		res, err := fn(chunk)
		if err != nil {
			return err
		}
		out = append(out, res...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// step is the chunk length: the cap rounded down to a group multiple.
func (c Chunker) step(group int) int {
	if group < 1 {
		group = 1
	}
	step := c.size - c.size%group
	if step < group {
		step = group
	}
	return step
}
