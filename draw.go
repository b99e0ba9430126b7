package megasena

import (
	"slices"
	"sort"
	"time"
)

// Draw is one historical Mega-Sena result
type Draw struct {
	Number  int                 `json:"number"`  // Contest (concurso) number
	Date    time.Time           `json:"date"`    // Draw date
	Numbers [NumbersPerDraw]int `json:"numbers"` // Winning numbers in drawn order
}

// Validate validates the draw data
func (d *Draw) Validate() error {
	if d.Number <= 0 {
		return ErrInvalidDraw.WithDetailsf("draw number must be positive, got %d", d.Number)
	}

	seen := make(map[int]struct{}, NumbersPerDraw)
	for _, n := range d.Numbers {
		if n < MinNumber || n > MaxNumber {
			return ErrInvalidDraw.WithDetailsf("draw %d: number %d outside [%d,%d]", d.Number, n, MinNumber, MaxNumber)
		}
		if _, dup := seen[n]; dup {
			return ErrInvalidDraw.WithDetailsf("draw %d: number %d repeated", d.Number, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Contains reports whether n was drawn
func (d *Draw) Contains(n int) bool {
	return slices.Contains(d.Numbers[:], n)
}

// Sorted returns the drawn numbers in ascending order
func (d *Draw) Sorted() []int {
	out := slices.Clone(d.Numbers[:])
	slices.Sort(out)
	return out
}

// DrawHistory is an immutable, ordered sequence of draws. A new history is
// built whenever the dataset is replaced; readers never see it change.
type DrawHistory struct {
	draws []Draw
}

// NewDrawHistory validates draws and returns them ordered by draw number.
// Draw numbers must be unique.
func NewDrawHistory(draws []Draw) (*DrawHistory, error) {
	ordered := slices.Clone(draws)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	for i := range ordered {
		if err := ordered[i].Validate(); err != nil {
			return nil, err
		}
		if i > 0 && ordered[i].Number == ordered[i-1].Number {
			return nil, ErrInvalidDraw.WithDetailsf("draw number %d repeated", ordered[i].Number)
		}
	}

	return &DrawHistory{draws: ordered}, nil
}

// Len returns the number of draws
func (h *DrawHistory) Len() int { return len(h.draws) }

// Draws returns a copy of every draw, oldest first
func (h *DrawHistory) Draws() []Draw { return slices.Clone(h.draws) }

// Latest returns the most recent draw
func (h *DrawHistory) Latest() (Draw, bool) {
	if len(h.draws) == 0 {
		return Draw{}, false
	}
	return h.draws[len(h.draws)-1], true
}

// Tail returns the last n draws, oldest first. n <= 0 or n >= Len returns everything.
func (h *DrawHistory) Tail(n int) []Draw {
	if n <= 0 || n >= len(h.draws) {
		return h.draws
	}
	return h.draws[len(h.draws)-n:]
}
