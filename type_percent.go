package ledger

import "fmt"

// Percent is a ratio expressed in percent, e.g. a gross margin.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// String formats the percent with one decimal, like the dashboard does.
func (p Percent) String() string {
	return fmt.Sprintf("%.1f%%", float64(p))
}
