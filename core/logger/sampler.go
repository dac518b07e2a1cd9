package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets num events out of every den pass. The ratio is packed
// into one word so Allow never takes a lock. A zero ratio lets everything
// through.
type ratioSampler struct {
	ratio atomic.Uint64
	seq   atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the window.
func (s *ratioSampler) Set(num, den int) {
	if num <= 0 || den <= 0 || den > 1<<31 {
		num, den = 0, 0
	}
	s.ratio.Store(uint64(min(num, den))<<32 | uint64(den))
	s.seq.Store(0)
}

// Allow reports whether the current event passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	den := r & 0xffffffff
	if den == 0 {
		return true
	}
	return (s.seq.Add(1)-1)%den < r>>32
}

// parseRatioSpec accepts "n/d" or "d" (meaning 1/d). Invalid input yields 0/0.
func parseRatioSpec(spec string) (int, int) {
	a, b, hasSlash := strings.Cut(strings.TrimSpace(spec), "/")
	if !hasSlash {
		a, b = "1", a
	}
	num, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0
	}
	den, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil || (!hasSlash && den <= 0) {
		return 0, 0
	}
	return num, den
}
