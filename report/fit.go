package report

import "strings"

// FitText truncates text so it measures within maxWidth, ending it with
// ellipsis. Runes are accepted left to right while prefix+ellipsis fits.
// Returns "" when not even one rune fits beside the ellipsis.
func FitText(text string, maxWidth, fontSize float64, measure MeasureFunc, ellipsis string) string {
	if measure(text, fontSize) <= maxWidth {
		return text
	}

	var fitted strings.Builder
	for _, r := range text {
		candidate := fitted.String() + string(r)
		if measure(candidate+ellipsis, fontSize) > maxWidth {
			break
		}
		fitted.WriteRune(r)
	}
	if fitted.Len() == 0 {
		return ""
	}
	return fitted.String() + ellipsis
}
