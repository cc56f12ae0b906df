package audioin

// ring is a fixed-size sample buffer overwritten oldest-first. It has
// no locking of its own; the Stream serializes access.
type ring struct {
	buf  []float64
	pos  int
	full bool
}

func newRing(size int) *ring {
	return &ring{buf: make([]float64, size)}
}

// write appends samples, overwriting the oldest when the buffer wraps.
func (r *ring) write(samples []float64) {
	for len(samples) > 0 {
		n := copy(r.buf[r.pos:], samples)
		r.pos += n
		if r.pos == len(r.buf) {
			r.pos = 0
			r.full = true
		}
		samples = samples[n:]
	}
}

// snapshot copies the newest len(dst) samples into dst in time order,
// oldest first, and reports how many were available.
func (r *ring) snapshot(dst []float64) int {
	avail := r.pos
	if r.full {
		avail = len(r.buf)
	}

	n := len(dst)
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	start := r.pos - n
	if start < 0 {
		start += len(r.buf)
	}

	m := copy(dst[:n], r.buf[start:])
	if m < n {
		copy(dst[m:n], r.buf[:n-m])
	}

	return n
}

// reset drops all buffered samples.
func (r *ring) reset() {
	r.pos = 0
	r.full = false
}
