// Package offer pulls dealer OTD figures out of free text. Two variants exist:
// ParseAmount takes the largest plausible number (a sentence quoting an OTD
// usually also quotes smaller fee and add-on amounts), and ParseDealerOffer
// ranks candidates by how much the surrounding text looks like a quote.
package offer

import (
	"regexp"
	"strconv"
	"strings"

	"dealcoach/pkg/money"
)

// Plausible OTD range. Anything outside is a fee, a payment, a VIN fragment,
// or a typo, not a vehicle out-the-door price.
const (
	MinPlausibleOTD money.Amount = 1000
	MaxPlausibleOTD money.Amount = 200000
)

// Confidence is how sure the extractor is that a candidate is the dealer's OTD.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParsedOffer is the single best candidate from a piece of dealer text.
type ParsedOffer struct {
	Amount      money.Amount `json:"amount"`
	Confidence  Confidence   `json:"confidence"`
	MatchedText string       `json:"matchedText"`
}

// dollarPattern matches $-prefixed digit groups with optional commas;
// barePattern matches standalone 4-6 digit numbers.
var (
	dollarPattern = regexp.MustCompile(`\$\s?\d{1,3}(?:,\d{3})+|\$\s?\d+`)
	barePattern   = regexp.MustCompile(`\b\d{4,6}\b`)
)

var quoteKeywords = []string{"otd", "out the door", "out-the-door", "total", "offer", "price", "worksheet", "quote"}

type candidate struct {
	amount  money.Amount
	matched string
	pos     int
	dollar  bool
	grouped bool
}

func scan(text string) []candidate {
	var cands []candidate
	seen := map[int]bool{}

	for _, loc := range dollarPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		amt, ok := parseDigits(raw)
		if !ok {
			continue
		}
		cands = append(cands, candidate{
			amount:  amt,
			matched: raw,
			pos:     loc[0],
			dollar:  true,
			grouped: strings.Contains(raw, ","),
		})
		for i := loc[0]; i < loc[1]; i++ {
			seen[i] = true
		}
	}

	for _, loc := range barePattern.FindAllStringIndex(text, -1) {
		if seen[loc[0]] {
			continue // already captured as part of a $ token
		}
		raw := text[loc[0]:loc[1]]
		amt, ok := parseDigits(raw)
		if !ok {
			continue
		}
		cands = append(cands, candidate{amount: amt, matched: raw, pos: loc[0]})
	}
	return cands
}

func parseDigits(raw string) (money.Amount, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func plausible(amt money.Amount) bool {
	return amt >= MinPlausibleOTD && amt <= MaxPlausibleOTD
}

// ParseAmount returns the largest plausible amount in the text, or false when
// nothing in the [1000, 200000] range appears. Never fails on garbage input.
func ParseAmount(text string) (money.Amount, bool) {
	var best money.Amount
	found := false
	for _, c := range scan(text) {
		if !plausible(c.amount) {
			continue
		}
		if !found || c.amount > best {
			best = c.amount
			found = true
		}
	}
	return best, found
}

// ParseDealerOffer is the strict variant used when the user explicitly pastes
// a "dealer said" quote. Candidates are scored on quote-like signals ($ sign,
// comma grouping, digit count, proximity to words like "OTD" or "total") and
// the highest score wins; amount breaks ties.
func ParseDealerOffer(text string) (ParsedOffer, bool) {
	lower := strings.ToLower(text)

	var best ParsedOffer
	bestScore := -1
	for _, c := range scan(text) {
		if !plausible(c.amount) {
			continue
		}
		score := 0
		if c.dollar {
			score += 2
		}
		if c.grouped {
			score++
		}
		if c.amount >= 10000 {
			score++
		}
		if nearKeyword(lower, c.pos) {
			score += 2
		}
		if score > bestScore || (score == bestScore && c.amount > best.Amount) {
			best = ParsedOffer{Amount: c.amount, Confidence: tier(score), MatchedText: c.matched}
			bestScore = score
		}
	}
	if bestScore < 0 {
		return ParsedOffer{}, false
	}
	return best, true
}

// nearKeyword reports whether a contextual quote keyword appears within 40
// characters of the candidate.
func nearKeyword(lower string, pos int) bool {
	start := pos - 40
	if start < 0 {
		start = 0
	}
	end := pos + 40
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]
	for _, kw := range quoteKeywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

func tier(score int) Confidence {
	switch {
	case score >= 4:
		return ConfidenceHigh
	case score >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
