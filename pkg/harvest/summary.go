package harvest

import "time"

// Summary tallies a finished batch.
type Summary struct {
	Succeeded int
	Failed    int
	Untitled  int // Skipped: fetched and parsed but without a title
	Elapsed   time.Duration
}

// Add records one page outcome. Each page lands in exactly one bucket.
func (s *Summary) Add(r *Result) {
	switch {
	case r.Untitled():
		s.Untitled++
	case r.Error == nil:
		s.Succeeded++
	default:
		s.Failed++
	}
}

// Total is the number of pages seen.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Untitled
}
