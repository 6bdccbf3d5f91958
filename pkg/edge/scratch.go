package edge

import "sync"

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new([]byte)
	},
}

// scratch hands out pooled buffers for the duration of a single Process
// call. Every buffer acquired is returned to the pool by release, so callers
// defer release right after declaring the scratch. Buffers must not outlive
// the call.
type scratch struct {
	held []*[]byte
}

func (s *scratch) acquire(n int) []byte {
	buf := bufferPool.Get().(*[]byte)
	if cap(*buf) < n {
		*buf = make([]byte, n)
	}
	s.held = append(s.held, buf)
	return (*buf)[:n]
}

func (s *scratch) release() {
	for _, buf := range s.held {
		bufferPool.Put(buf)
	}
	s.held = nil
}
