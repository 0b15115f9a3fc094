package ambiguity

import (
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// Config holds the term lists, weights and risk thresholds the detector
// applies. Everything here is tunable policy, not engine behavior.
type Config struct {
	VagueQualifiers     []string
	VagueQuantifiers    []string
	ComplexConditionals []string
	NegationMarkers     []string

	QualifierWeight   float64
	QuantifierWeight  float64
	ConditionalWeight float64

	// RepeatDecay diminishes repeated hits of the same category so term
	// repetition cannot run the score away
	RepeatDecay float64

	MissingSpecificsWeight  float64
	MultipleNegationsWeight float64
	LongSentencesWeight     float64

	// MinTextLenForSpecifics gates the missing-specifics signal to
	// clauses long enough to be expected to carry numbers or dates
	MinTextLenForSpecifics int
	LongSentenceWords      int

	// HighImpactTypes are clause types treated as inherently higher
	// impact in the risk table
	HighImpactTypes []models.ClauseType

	// Risk bucket thresholds on the ambiguity score
	HighScore     float64
	VeryHighScore float64
	ModerateScore float64
}

// DefaultConfig returns the default detection policy
func DefaultConfig() Config {
	return Config{
		VagueQualifiers: []string{
			"reasonable", "appropriate", "substantial", "material",
			"promptly", "timely", "as soon as possible", "best efforts",
			"good faith", "commercially reasonable", "may", "might",
			"approximately", "about", "around", "generally", "typically",
			"adequate", "sufficient", "necessary", "proper", "satisfactory",
		},
		VagueQuantifiers: []string{
			"some", "several", "few", "many", "most", "numerous",
			"various", "certain", "multiple", "materially",
		},
		ComplexConditionals: []string{
			"unless", "except", "provided that", "subject to",
			"notwithstanding", "whereas", "whereby",
		},
		NegationMarkers: []string{
			"not", "no", "never", "neither", "nor",
		},

		QualifierWeight:   0.15,
		QuantifierWeight:  0.10,
		ConditionalWeight: 0.12,
		RepeatDecay:       0.5,

		MissingSpecificsWeight:  0.25,
		MultipleNegationsWeight: 0.20,
		LongSentencesWeight:     0.15,

		MinTextLenForSpecifics: 100,
		LongSentenceWords:      40,

		HighImpactTypes: []models.ClauseType{
			models.TypeLiability,
			models.TypeIndemnification,
			models.TypeTermination,
			models.TypePayment,
			models.TypeIntellectualProperty,
		},

		HighScore:     0.6,
		VeryHighScore: 0.8,
		ModerateScore: 0.4,
	}
}
