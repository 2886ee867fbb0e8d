package metric

// Band is a human reading of a distance value.
type Band string

const (
	Indistinguishable   Band = "indistinguishable"
	VeryClose           Band = "very close"
	Similar             Band = "similar"
	NoticeablyDifferent Band = "noticeably different"
	VeryDifferent       Band = "very different"
)

// Interpret places d in one of the five perceptual bands. Band edges belong
// to the upper band: 2 is "very close", 20 is "very different".
func Interpret(d float64) Band {
	switch {
	case d < 2:
		return Indistinguishable
	case d < 5:
		return VeryClose
	case d < 10:
		return Similar
	case d < 20:
		return NoticeablyDifferent
	default:
		return VeryDifferent
	}
}

// IsExactMatch reports whether d is below ExactMatchThreshold.
func IsExactMatch(d float64) bool { return d < ExactMatchThreshold }

// IsUnreachable reports whether d exceeds UnreachableThreshold.
func IsUnreachable(d float64) bool { return d > UnreachableThreshold }
