// Package ambiguity scans clause text for vague language and complex
// conditional structure and grades the interpretation risk. Analysis is
// deterministic: the same text always yields the same Interpretation.
package ambiguity

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/internal/textnorm"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// Detector finds ambiguity signals in clause text
type Detector struct {
	cfg        Config
	highImpact map[models.ClauseType]bool
	patterns   map[models.FindingCategory][]termPattern
}

type termPattern struct {
	term string
	re   *regexp.Regexp
}

// NewDetector creates a detector with the given policy. Zero-value
// fields fall back to defaults.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if len(cfg.VagueQualifiers) == 0 {
		cfg.VagueQualifiers = def.VagueQualifiers
	}
	if len(cfg.VagueQuantifiers) == 0 {
		cfg.VagueQuantifiers = def.VagueQuantifiers
	}
	if len(cfg.ComplexConditionals) == 0 {
		cfg.ComplexConditionals = def.ComplexConditionals
	}
	if len(cfg.NegationMarkers) == 0 {
		cfg.NegationMarkers = def.NegationMarkers
	}
	if cfg.QualifierWeight == 0 {
		cfg.QualifierWeight = def.QualifierWeight
	}
	if cfg.QuantifierWeight == 0 {
		cfg.QuantifierWeight = def.QuantifierWeight
	}
	if cfg.ConditionalWeight == 0 {
		cfg.ConditionalWeight = def.ConditionalWeight
	}
	if cfg.RepeatDecay == 0 {
		cfg.RepeatDecay = def.RepeatDecay
	}
	if cfg.MissingSpecificsWeight == 0 {
		cfg.MissingSpecificsWeight = def.MissingSpecificsWeight
	}
	if cfg.MultipleNegationsWeight == 0 {
		cfg.MultipleNegationsWeight = def.MultipleNegationsWeight
	}
	if cfg.LongSentencesWeight == 0 {
		cfg.LongSentencesWeight = def.LongSentencesWeight
	}
	if cfg.MinTextLenForSpecifics == 0 {
		cfg.MinTextLenForSpecifics = def.MinTextLenForSpecifics
	}
	if cfg.LongSentenceWords == 0 {
		cfg.LongSentenceWords = def.LongSentenceWords
	}
	if len(cfg.HighImpactTypes) == 0 {
		cfg.HighImpactTypes = def.HighImpactTypes
	}
	if cfg.HighScore == 0 {
		cfg.HighScore = def.HighScore
	}
	if cfg.VeryHighScore == 0 {
		cfg.VeryHighScore = def.VeryHighScore
	}
	if cfg.ModerateScore == 0 {
		cfg.ModerateScore = def.ModerateScore
	}

	d := &Detector{
		cfg:        cfg,
		highImpact: make(map[models.ClauseType]bool, len(cfg.HighImpactTypes)),
		patterns:   make(map[models.FindingCategory][]termPattern),
	}
	for _, t := range cfg.HighImpactTypes {
		d.highImpact[t] = true
	}
	d.patterns[models.CategoryVagueQualifier] = compileTerms(cfg.VagueQualifiers)
	d.patterns[models.CategoryVagueQuantifier] = compileTerms(cfg.VagueQuantifiers)
	d.patterns[models.CategoryComplexConditional] = compileTerms(cfg.ComplexConditionals)
	return d
}

func compileTerms(terms []string) []termPattern {
	patterns := make([]termPattern, 0, len(terms))
	for _, term := range terms {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(term)) + `\b`)
		patterns = append(patterns, termPattern{term: strings.ToLower(term), re: re})
	}
	return patterns
}

var numberPattern = regexp.MustCompile(`\d`)

// Analyze produces an Interpretation for one clause. Spans in the
// findings refer to the normalized text.
func (d *Detector) Analyze(clause models.Clause) models.Interpretation {
	text := clause.NormalizedText
	if text == "" {
		text = textnorm.Normalize(clause.Text)
	}

	var findings []models.Finding
	score := 0.0

	categoryOrder := []models.FindingCategory{
		models.CategoryVagueQualifier,
		models.CategoryVagueQuantifier,
		models.CategoryComplexConditional,
	}
	weights := map[models.FindingCategory]float64{
		models.CategoryVagueQualifier:     d.cfg.QualifierWeight,
		models.CategoryVagueQuantifier:    d.cfg.QuantifierWeight,
		models.CategoryComplexConditional: d.cfg.ConditionalWeight,
	}

	for _, category := range categoryOrder {
		matches := d.matchCategory(text, category)
		findings = append(findings, matches...)
		score += diminishing(weights[category], d.cfg.RepeatDecay, len(matches))
	}

	// Missing specifics: long high-impact clauses without any number are
	// a risk of their own
	if d.highImpact[clause.Type] && len(text) > d.cfg.MinTextLenForSpecifics && !numberPattern.MatchString(text) {
		findings = append(findings, models.Finding{
			Category: models.CategoryMissingSpecifics,
			Start:    0,
			End:      len(text),
		})
		score += d.cfg.MissingSpecificsWeight
	}

	if d.countNegations(text) >= 2 {
		findings = append(findings, models.Finding{
			Category: models.CategoryMultipleNegations,
			Start:    0,
			End:      len(text),
		})
		score += d.cfg.MultipleNegationsWeight
	}

	if avgSentenceWords(text) > float64(d.cfg.LongSentenceWords) {
		findings = append(findings, models.Finding{
			Category: models.CategoryLongSentences,
			Start:    0,
			End:      len(text),
		})
		score += d.cfg.LongSentencesWeight
	}

	score = math.Min(score, 1.0)
	hasAmbiguity := len(findings) > 0

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Start != findings[j].Start {
			return findings[i].Start < findings[j].Start
		}
		return findings[i].Term < findings[j].Term
	})

	risk := d.riskLevel(clause.Type, score, hasAmbiguity)

	return models.Interpretation{
		ID:             uuid.New(),
		ClauseID:       clause.ID,
		HasAmbiguity:   hasAmbiguity,
		AmbiguityScore: score,
		Risk:           risk,
		Findings:       findings,
		Rationale:      d.rationale(clause.Type, findings, score),
	}
}

func (d *Detector) matchCategory(text string, category models.FindingCategory) []models.Finding {
	var found []models.Finding
	for _, p := range d.patterns[category] {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			found = append(found, models.Finding{
				Term:     p.term,
				Category: category,
				Start:    loc[0],
				End:      loc[1],
			})
		}
	}
	return found
}

// diminishing sums weight * decay^i for i in [0,hits): repeated hits of
// the same category contribute less and less
func diminishing(weight, decay float64, hits int) float64 {
	total := 0.0
	w := weight
	for i := 0; i < hits; i++ {
		total += w
		w *= decay
	}
	return total
}

func (d *Detector) countNegations(text string) int {
	count := 0
	padded := " " + text + " "
	for _, neg := range d.cfg.NegationMarkers {
		count += strings.Count(padded, " "+neg+" ")
	}
	return count
}

func avgSentenceWords(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == ';'
	})
	if len(sentences) == 0 {
		return 0
	}
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	return float64(words) / float64(len(sentences))
}

// riskLevel combines the ambiguity score with the clause type's impact
// tier. High-impact types escalate faster.
func (d *Detector) riskLevel(t models.ClauseType, score float64, hasAmbiguity bool) models.RiskLevel {
	highImpact := d.highImpact[t]
	switch {
	case highImpact && score >= d.cfg.HighScore:
		return models.RiskCritical
	case highImpact && hasAmbiguity:
		return models.RiskHigh
	case score >= d.cfg.VeryHighScore:
		return models.RiskHigh
	case score >= d.cfg.ModerateScore:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func (d *Detector) rationale(t models.ClauseType, findings []models.Finding, score float64) string {
	if len(findings) == 0 {
		return "No ambiguity signals detected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This %s clause ", strings.ToLower(string(t)))
	if len(findings) == 1 {
		b.WriteString("contains ambiguous language that ")
	} else {
		b.WriteString("contains multiple ambiguities that ")
	}
	b.WriteString("may lead to different interpretations. ")

	switch t {
	case models.TypePayment:
		b.WriteString("Payment terms should specify exact amounts, dates, and conditions. ")
	case models.TypeTermination:
		b.WriteString("Termination conditions should specify clear timelines and procedures. ")
	case models.TypeLiability, models.TypeIndemnification:
		b.WriteString("Liability limits should be explicitly stated with specific dollar amounts. ")
	case models.TypeObligation, models.TypeExclusion:
		b.WriteString("Obligations and exclusions should use clear, unambiguous language. ")
	}

	fmt.Fprintf(&b, "Ambiguity score: %.0f%%.", score*100)
	return b.String()
}
