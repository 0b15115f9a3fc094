package conflict

import (
	"regexp"
	"strings"
)

// Polarity is the obligation/prohibition signal extracted from one
// clause. A prohibition marker wins over the obligation marker it
// contains ("shall not" subsumes "shall"), so the two flags are
// mutually exclusive.
type Polarity struct {
	Obligation  bool
	Prohibition bool
	Negations   int
}

type polarityExtractor struct {
	obligations  []*regexp.Regexp
	prohibitions []*regexp.Regexp
	negations    []string
}

func newPolarityExtractor(cfg Config) *polarityExtractor {
	return &polarityExtractor{
		obligations:  compileMarkers(cfg.ObligationMarkers),
		prohibitions: compileMarkers(cfg.ProhibitionMarkers),
		negations:    cfg.NegationMarkers,
	}
}

func compileMarkers(markers []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(markers))
	for _, m := range markers {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(m))+`\b`))
	}
	return res
}

// Extract computes the polarity signal from normalized clause text
func (p *polarityExtractor) Extract(text string) Polarity {
	var pol Polarity

	for _, re := range p.prohibitions {
		if re.MatchString(text) {
			pol.Prohibition = true
			break
		}
	}
	if !pol.Prohibition {
		for _, re := range p.obligations {
			if re.MatchString(text) {
				pol.Obligation = true
				break
			}
		}
	}

	padded := " " + text + " "
	for _, neg := range p.negations {
		pol.Negations += strings.Count(padded, " "+neg+" ")
	}

	return pol
}

// disagreement scores how strongly two polarity signals oppose each
// other, in [0,1]. Zero means the clauses agree in polarity.
func (p *polarityExtractor) disagreement(a, b Polarity, cfg Config) float64 {
	score := 0.0

	if (a.Obligation && b.Prohibition) || (a.Prohibition && b.Obligation) {
		score += cfg.PolarityDisagreementStrength
	}

	diff := a.Negations - b.Negations
	if diff < 0 {
		diff = -diff
	}
	if diff >= cfg.NegationImbalanceMin {
		score += cfg.NegationImbalanceStrength
	}

	if score > 1 {
		score = 1
	}
	return score
}
