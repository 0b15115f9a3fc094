package conflict

import (
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// Config holds the thresholds and marker lists the detector applies.
// These are tuning policy: tests and deployments vary them freely.
type Config struct {
	// CandidateThreshold is the loose similarity pre-filter for clause
	// pairs. Recall over precision: classification makes the final call.
	CandidateThreshold float64

	// SimilarityWeight balances similarity against the polarity/numeric
	// signal in the confidence score:
	// confidence = w*similarity + (1-w)*signal
	SimilarityWeight float64

	// PolarityDisagreementStrength is the signal contributed by an
	// obligation facing a prohibition on the same subject
	PolarityDisagreementStrength float64

	// NegationImbalanceStrength is added when the negation counts of
	// the two clauses differ by NegationImbalanceMin or more
	NegationImbalanceStrength float64
	NegationImbalanceMin      int

	// NumericDeltaMin is the relative difference above which two
	// numeric values of the same unit count as materially different
	NumericDeltaMin float64

	// Severity thresholds on the confidence score
	CriticalConfidence float64
	MediumConfidence   float64

	// HighImpactTypes escalate severity one level
	HighImpactTypes []models.ClauseType

	ObligationMarkers  []string
	ProhibitionMarkers []string
	NegationMarkers    []string
}

// DefaultConfig returns the default detection policy
func DefaultConfig() Config {
	return Config{
		CandidateThreshold:           0.6,
		SimilarityWeight:             0.6,
		PolarityDisagreementStrength: 0.7,
		NegationImbalanceStrength:    0.3,
		NegationImbalanceMin:         2,
		NumericDeltaMin:              0.05,
		CriticalConfidence:           0.7,
		MediumConfidence:             0.5,
		HighImpactTypes: []models.ClauseType{
			models.TypeLiability,
			models.TypeTermination,
			models.TypeIndemnification,
			models.TypePayment,
		},
		ObligationMarkers: []string{
			"shall", "must", "will", "required", "obligated",
		},
		ProhibitionMarkers: []string{
			"shall not", "must not", "may not", "will not",
			"prohibited", "forbidden", "not permitted",
		},
		NegationMarkers: []string{
			"not", "no", "never", "without", "except", "excluding",
		},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CandidateThreshold == 0 {
		c.CandidateThreshold = def.CandidateThreshold
	}
	if c.SimilarityWeight == 0 {
		c.SimilarityWeight = def.SimilarityWeight
	}
	if c.PolarityDisagreementStrength == 0 {
		c.PolarityDisagreementStrength = def.PolarityDisagreementStrength
	}
	if c.NegationImbalanceStrength == 0 {
		c.NegationImbalanceStrength = def.NegationImbalanceStrength
	}
	if c.NegationImbalanceMin == 0 {
		c.NegationImbalanceMin = def.NegationImbalanceMin
	}
	if c.NumericDeltaMin == 0 {
		c.NumericDeltaMin = def.NumericDeltaMin
	}
	if c.CriticalConfidence == 0 {
		c.CriticalConfidence = def.CriticalConfidence
	}
	if c.MediumConfidence == 0 {
		c.MediumConfidence = def.MediumConfidence
	}
	if len(c.HighImpactTypes) == 0 {
		c.HighImpactTypes = def.HighImpactTypes
	}
	if len(c.ObligationMarkers) == 0 {
		c.ObligationMarkers = def.ObligationMarkers
	}
	if len(c.ProhibitionMarkers) == 0 {
		c.ProhibitionMarkers = def.ProhibitionMarkers
	}
	if len(c.NegationMarkers) == 0 {
		c.NegationMarkers = def.NegationMarkers
	}
	return c
}
