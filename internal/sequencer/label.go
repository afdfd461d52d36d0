package sequencer

import "fmt"

// FormatLabel renders a countdown value (deciseconds) as T-MM:SS.D while
// counting down and T+MM:SS.D once past zero. Zero itself renders with '-'.
func FormatLabel(v int) string {
	sign := '-'
	if v < 0 {
		sign = '+'
	}
	a := v
	if a < 0 {
		a = -a
	}
	return fmt.Sprintf("T%c%02d:%02d.%d", sign, a/600, (a%600)/10, a%10)
}
