package ambiguity

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/pkg/models"
)

func clause(t models.ClauseType, text string) models.Clause {
	return models.Clause{
		ID:         uuid.New(),
		ContractID: uuid.New(),
		Type:       t,
		Text:       text,
	}
}

func TestAnalyzeFindsVagueQualifiers(t *testing.T) {
	d := NewDetector(Config{})

	interp := d.Analyze(clause(models.TypeObligation,
		"The Contractor shall use reasonable efforts where appropriate."))

	if !interp.HasAmbiguity {
		t.Fatal("expected ambiguity to be flagged")
	}

	found := map[string]models.FindingCategory{}
	for _, f := range interp.Findings {
		found[f.Term] = f.Category
	}
	if found["reasonable"] != models.CategoryVagueQualifier {
		t.Errorf("expected 'reasonable' as VAGUE_QUALIFIER, findings: %v", interp.Findings)
	}
	if found["appropriate"] != models.CategoryVagueQualifier {
		t.Errorf("expected 'appropriate' as VAGUE_QUALIFIER, findings: %v", interp.Findings)
	}
}

func TestAnalyzeFindingSpans(t *testing.T) {
	d := NewDetector(Config{})

	c := clause(models.TypeGeneral, "Delivery shall occur promptly.")
	interp := d.Analyze(c)

	if len(interp.Findings) == 0 {
		t.Fatal("expected at least one finding")
	}

	normalized := "delivery shall occur promptly."
	for _, f := range interp.Findings {
		if f.Term == "" {
			continue
		}
		if normalized[f.Start:f.End] != f.Term {
			t.Errorf("span [%d:%d] = %q, want %q", f.Start, f.End, normalized[f.Start:f.End], f.Term)
		}
	}
}

func TestAnalyzeCleanClause(t *testing.T) {
	d := NewDetector(Config{})

	interp := d.Analyze(clause(models.TypeGeneral,
		"Invoices are issued on the first business day."))

	if interp.HasAmbiguity {
		t.Errorf("expected no ambiguity, findings: %v", interp.Findings)
	}
	if interp.AmbiguityScore != 0 {
		t.Errorf("expected score 0, got %v", interp.AmbiguityScore)
	}
	if interp.Risk != models.RiskLow {
		t.Errorf("expected LOW risk, got %v", interp.Risk)
	}
}

func TestAnalyzeRepeatedTermsDiminish(t *testing.T) {
	d := NewDetector(Config{})

	once := d.Analyze(clause(models.TypeGeneral, "Use reasonable care."))
	many := d.Analyze(clause(models.TypeGeneral,
		"Use reasonable care, reasonable skill, reasonable diligence, reasonable judgment and reasonable speed."))

	if many.AmbiguityScore <= once.AmbiguityScore {
		t.Error("more hits should still raise the score")
	}
	// five hits at full weight would be 0.75; diminishing keeps it well below
	if many.AmbiguityScore >= 5*once.AmbiguityScore {
		t.Errorf("expected diminishing repeat weight, got %v vs %v", many.AmbiguityScore, once.AmbiguityScore)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	d := NewDetector(Config{})
	c := clause(models.TypeLiability,
		"The parties shall make good faith efforts to resolve disputes promptly, unless otherwise agreed.")

	a := d.Analyze(c)
	b := d.Analyze(c)

	if a.AmbiguityScore != b.AmbiguityScore {
		t.Errorf("scores differ: %v vs %v", a.AmbiguityScore, b.AmbiguityScore)
	}
	if a.Risk != b.Risk {
		t.Errorf("risk differs: %v vs %v", a.Risk, b.Risk)
	}
	if !reflect.DeepEqual(a.Findings, b.Findings) {
		t.Errorf("findings differ: %v vs %v", a.Findings, b.Findings)
	}
	if a.Rationale != b.Rationale {
		t.Error("rationales differ")
	}
}

func TestRiskEscalatesForHighImpactTypes(t *testing.T) {
	d := NewDetector(Config{})
	text := "The Supplier may terminate for any reasonable cause where appropriate, subject to such conditions as may be necessary."

	liability := d.Analyze(clause(models.TypeLiability, text))
	general := d.Analyze(clause(models.TypeGeneral, text))

	if riskRank(liability.Risk) <= riskRank(general.Risk) {
		t.Errorf("liability clause should outrank general: %v vs %v", liability.Risk, general.Risk)
	}
	if riskRank(liability.Risk) < riskRank(models.RiskHigh) {
		t.Errorf("ambiguous liability clause should be at least HIGH, got %v", liability.Risk)
	}
}

func TestRiskCriticalForHighlyAmbiguousLiability(t *testing.T) {
	d := NewDetector(Config{})

	interp := d.Analyze(clause(models.TypeLiability,
		"The Supplier shall use commercially reasonable and appropriate efforts in good faith to settle "+
			"several claims promptly, unless such settlement is not adequate, not sufficient or otherwise "+
			"not proper; provided that substantial and material obligations remain subject to various "+
			"conditions as may typically be necessary."))

	if interp.Risk != models.RiskCritical {
		t.Errorf("expected CRITICAL, got %v (score %v)", interp.Risk, interp.AmbiguityScore)
	}
}

func TestMissingSpecificsSignal(t *testing.T) {
	d := NewDetector(Config{})

	interp := d.Analyze(clause(models.TypePayment,
		"Payment obligations accrue from time to time and remain payable by the customer to the supplier "+
			"in accordance with invoicing procedures agreed by both parties during the engagement."))

	var found bool
	for _, f := range interp.Findings {
		if f.Category == models.CategoryMissingSpecifics {
			found = true
		}
	}
	if !found {
		t.Errorf("expected MISSING_SPECIFICS for a long payment clause without numbers, findings: %v", interp.Findings)
	}
}

func TestMultipleNegationsSignal(t *testing.T) {
	d := NewDetector(Config{})

	interp := d.Analyze(clause(models.TypeGeneral,
		"The Customer shall not withhold consent and shall never assign rights, neither in whole nor in part."))

	var found bool
	for _, f := range interp.Findings {
		if f.Category == models.CategoryMultipleNegations {
			found = true
		}
	}
	if !found {
		t.Errorf("expected MULTIPLE_NEGATIONS, findings: %v", interp.Findings)
	}
}

func TestConfigurableTermLists(t *testing.T) {
	d := NewDetector(Config{
		VagueQualifiers: []string{"forthwith"},
	})

	interp := d.Analyze(clause(models.TypeGeneral, "The goods shall be returned forthwith."))
	if !interp.HasAmbiguity {
		t.Fatal("expected custom term to be matched")
	}
	if interp.Findings[0].Term != "forthwith" {
		t.Errorf("expected 'forthwith', got %q", interp.Findings[0].Term)
	}

	// The default list must not leak in once a custom one is supplied
	none := d.Analyze(clause(models.TypeGeneral, "Use reasonable care."))
	if none.HasAmbiguity {
		t.Error("default qualifiers should be replaced by the custom list")
	}
}

func riskRank(r models.RiskLevel) int {
	switch r {
	case models.RiskCritical:
		return 4
	case models.RiskHigh:
		return 3
	case models.RiskMedium:
		return 2
	default:
		return 1
	}
}
