package checks

// Embed colors, green through red. Same palette Discord moderation logs
// conventionally use.
const (
	ColorGreen = 0x00C800
	ColorRed   = 0xC80000
)

// Failed counts the Fail verdicts in evals. NotApplicable results are not
// counted in either direction.
func Failed(evals []Evaluation) int {
	failed := 0
	for _, ev := range evals {
		if ev.Result.Verdict == Fail {
			failed++
		}
	}
	return failed
}

// Applicable counts the evaluations that produced a definite verdict.
func Applicable(evals []Evaluation) int {
	n := 0
	for _, ev := range evals {
		if ev.Result.Verdict != NotApplicable {
			n++
		}
	}
	return n
}

// SeverityColor maps a failure count to an RGB color between green and red.
// Intolerance is the number of failures still shown green; failures beyond it
// ramp linearly to full red at failed == total. Display-only: nothing reads
// this color back.
func SeverityColor(failed, total, intolerance int) int {
	if total <= 0 || failed <= 0 {
		return ColorGreen
	}
	over := failed - intolerance
	if over <= 0 {
		return ColorGreen
	}
	span := total - intolerance
	if span < 1 {
		span = 1
	}
	ratio := float64(over) / float64(span)
	if ratio > 1 {
		ratio = 1
	}
	return lerpColor(ColorGreen, ColorRed, ratio)
}

func lerpColor(from, to int, t float64) int {
	fr, fg, fb := (from>>16)&0xFF, (from>>8)&0xFF, from&0xFF
	tr, tg, tb := (to>>16)&0xFF, (to>>8)&0xFF, to&0xFF
	r := fr + int(float64(tr-fr)*t)
	g := fg + int(float64(tg-fg)*t)
	b := fb + int(float64(tb-fb)*t)
	return r<<16 | g<<8 | b
}
