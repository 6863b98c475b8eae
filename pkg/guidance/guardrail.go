package guidance

import (
	"regexp"
	"strconv"
	"strings"

	"dealcoach/pkg/deal"
	"dealcoach/pkg/money"
)

// guardTokenPattern matches $-prefixed amounts in candidate guidance text.
// Bare numbers are deliberately not matched here: guidance text quotes years,
// mileage and percentages, and only explicit dollar figures can contradict
// the ladder.
var guardTokenPattern = regexp.MustCompile(`\$\s?\d{1,3}(?:,\d{3})+|\$\s?\d+`)

// ViolatesLadder reports whether a piece of candidate guidance text names a
// dollar amount above the locked walk-away. An unlocked ladder never violates.
func ViolatesLadder(text string, ladder deal.Ladder) bool {
	if !ladder.Locked || ladder.Walk <= 0 {
		return false
	}
	for _, tok := range guardTokenPattern.FindAllString(text, -1) {
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(tok)
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil {
			continue
		}
		if money.Amount(n) > ladder.Walk {
			return true
		}
	}
	return false
}

// OutputViolatesLadder checks the fields the user will speak as acceptance
// language: sayThis, closingLine and stopSignal. The ladder summary is
// excluded on purpose - it legitimately echoes an ASK that can sit above WALK
// - and the pushback fields may quote the dealer's own higher number back at
// them without endorsing it. One spoken field over the line condemns the
// whole output.
func OutputViolatesLadder(out Output, ladder deal.Ladder) bool {
	for _, f := range []string{out.SayThis, out.ClosingLine, out.StopSignal} {
		if ViolatesLadder(f, ladder) {
			return true
		}
	}
	return false
}
