package viewport

import (
	"fmt"
	"math"

	"github.com/litescript/ls-twinmap/internal/geo"
)

// FormatBearing renders a bearing for the rotation readout, e.g. "-45°".
func FormatBearing(bearing float64) string {
	return fmt.Sprintf("%d°", SliderValue(bearing))
}

// SliderValue is the normalized bearing rounded to a whole degree, the value
// a -180..180 rotation slider shows. Halves round up, so bearings just above
// -180 read -180.
func SliderValue(bearing float64) int {
	return int(math.Floor(geo.NormalizeBearing(bearing) + 0.5))
}
