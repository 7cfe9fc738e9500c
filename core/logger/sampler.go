package logger

import (
	"strconv"
	"strings"
	"sync"
)

// sampler lets through keep out of every window debug events.
// A zero window disables sampling.
type sampler struct {
	mu     sync.Mutex
	keep   int
	window int
	seen   int
}

func (s *sampler) set(keep, window int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep <= 0 || window <= 0 {
		keep, window = 0, 0
	}
	s.keep, s.window, s.seen = min(keep, window), window, 0
}

func (s *sampler) allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window == 0 {
		return true
	}
	pos := s.seen
	s.seen = (s.seen + 1) % s.window
	return pos < s.keep
}

// parseRatio accepts "keep/window", a bare window "n" meaning "1/n", or
// "0"/"off" to disable sampling. ok is false for anything else.
func parseRatio(spec string) (keep, window int, ok bool) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "0", "off", "none":
		return 0, 0, true
	}
	if a, b, found := strings.Cut(spec, "/"); found {
		k, err1 := strconv.Atoi(strings.TrimSpace(a))
		w, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil || k < 0 || w < 0 {
			return 0, 0, false
		}
		return k, w, true
	}
	w, err := strconv.Atoi(spec)
	if err != nil || w < 0 {
		return 0, 0, false
	}
	return 1, w, true
}
