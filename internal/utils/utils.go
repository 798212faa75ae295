// Small numeric and terminal helpers shared by the filters and the preview
package utils

import (
	"fmt"
	"math"
)

// Returns the average of all given numbers n (truncated towards zero)
func Average(n ...int) int {
	// Sum all numbers
	var sum int
	for _, num := range n {
		sum += num
	}

	// Divide sum by total numbers
	return sum / len(n)
}

// Clamps an integer to the sample range [0, 255]
func ClampInt(v int) byte {
	if v < 0 {
		return 0
	} else if v > 255 {
		return 255
	}
	return byte(v)
}

// Clamps a real value to [0, 255] and truncates it to a sample
func ClampFloat(v float64) byte {
	return byte(math.Min(math.Max(v, 0), 255))
}

// Rounds a real value half away from zero, then clamps it to [0, 255]
func RoundClamp(v float64) byte {
	return ClampFloat(math.Round(v))
}

// Returns a colored block for true-color terminals
func ColoredBlock(block string, red int, green int, blue int) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm%s\033[0m", red, green, blue, block)
}
