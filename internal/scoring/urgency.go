package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"blood-request-routing/internal/models"
)

// Defaults applied when patient details are omitted
const (
	DefaultPatientAge = 30
	DefaultCondition  = "Stable"
	DefaultDepartment = "General Ward"
)

var (
	criticalConditions = []string{
		"critical", "life threatening", "life-threatening", "hemorrhag", "haemorrhag",
		"massive bleeding", "cardiac arrest", "shock", "unconscious", "polytrauma", "multiple trauma",
	}
	highConditions = []string{
		"severe", "bleeding", "trauma", "accident", "surgery", "emergency", "unstable",
		"burn", "dengue", "thalassemia", "thalassaemia",
	}
	moderateConditions = []string{
		"moderate", "anemia", "anaemia", "chemotherapy", "dialysis", "transfusion", "delivery", "pregnan",
	}
	stableConditions = []string{"stable", "routine", "elective", "planned", "scheduled"}

	criticalDepartmentTokens  = []string{"icu", "ccu", "nicu", "picu", "er", "ot"}
	criticalDepartmentPhrases = []string{
		"emergency", "trauma", "intensive care", "casualty", "operation theatre", "operation theater",
	}
)

// UrgencyInput is the patient/clinical record urgency is derived from.
// A nil PatientAge means unknown; zero is a newborn.
type UrgencyInput struct {
	PatientAge       *int
	PatientCondition string
	Department       string
	UnitsRequired    int
}

// UrgencyResult is the outcome of urgency evaluation
type UrgencyResult struct {
	Urgency               models.Urgency     `json:"urgency"`
	Priority              int                `json:"priority"`
	RequiresAdminApproval bool               `json:"requires_admin_approval"`
	Reasons               []string           `json:"reasons"`
	Patient               models.PatientInfo `json:"patient_info"`
}

// UrgencyCalculator derives an urgency tier from patient attributes. It holds no state.
type UrgencyCalculator struct{}

// NewUrgencyCalculator creates an urgency calculator
func NewUrgencyCalculator() *UrgencyCalculator {
	return &UrgencyCalculator{}
}

// Calculate evaluates, in order: condition keywords, department, age extremes, units required.
// A critical condition keyword ends evaluation immediately.
func (c *UrgencyCalculator) Calculate(in UrgencyInput) UrgencyResult {
	patient := in.patient()
	reasons := make([]string, 0, 4)

	tier, reason := conditionTier(patient.Condition)
	reasons = append(reasons, reason)

	if tier != models.UrgencyCritical && isCriticalDepartment(patient.Department) {
		tier = tier.Escalate()
		reasons = append(reasons, fmt.Sprintf("department %q escalates to %s", patient.Department, tier))
	}

	if tier != models.UrgencyCritical {
		age := patient.Age
		switch {
		case age < 1 || age >= 75:
			tier = tier.Escalate()
			reasons = append(reasons, fmt.Sprintf("patient age %d escalates to %s", age, tier))
		case (age <= 5 || age >= 65) && tier.Rank() < models.UrgencyHigh.Rank():
			tier = tier.Escalate()
			reasons = append(reasons, fmt.Sprintf("patient age %d escalates to %s", age, tier))
		}
	}

	if tier != models.UrgencyCritical {
		switch {
		case in.UnitsRequired >= 6:
			tier = tier.Escalate()
			reasons = append(reasons, fmt.Sprintf("%d units required escalates to %s", in.UnitsRequired, tier))
		case in.UnitsRequired >= 4 && tier.Rank() < models.UrgencyMedium.Rank():
			tier = models.UrgencyMedium
			reasons = append(reasons, fmt.Sprintf("%d units required lifts to %s", in.UnitsRequired, tier))
		}
	}

	return UrgencyResult{
		Urgency:               tier,
		Priority:              tier.Level(),
		RequiresAdminApproval: tier == models.UrgencyCritical,
		Reasons:               reasons,
		Patient:               patient,
	}
}

func (in UrgencyInput) patient() models.PatientInfo {
	p := models.PatientInfo{
		Age:        DefaultPatientAge,
		Condition:  strings.TrimSpace(in.PatientCondition),
		Department: strings.TrimSpace(in.Department),
	}
	if in.PatientAge != nil {
		p.Age = *in.PatientAge
	}
	if p.Condition == "" {
		p.Condition = DefaultCondition
	}
	if p.Department == "" {
		p.Department = DefaultDepartment
	}
	return p
}

func conditionTier(condition string) (models.Urgency, string) {
	lower := strings.ToLower(condition)
	if kw, ok := matchAny(lower, criticalConditions); ok {
		return models.UrgencyCritical, fmt.Sprintf("condition matches critical keyword %q", kw)
	}
	if kw, ok := matchAny(lower, highConditions); ok {
		return models.UrgencyHigh, fmt.Sprintf("condition matches high keyword %q", kw)
	}
	if kw, ok := matchAny(lower, moderateConditions); ok {
		return models.UrgencyMedium, fmt.Sprintf("condition matches moderate keyword %q", kw)
	}
	if kw, ok := matchAny(lower, stableConditions); ok {
		return models.UrgencyLow, fmt.Sprintf("condition matches stable keyword %q", kw)
	}
	return models.UrgencyMedium, "no condition keyword matched, defaulting to MEDIUM"
}

func isCriticalDepartment(department string) bool {
	lower := strings.ToLower(department)
	if _, ok := matchAny(lower, criticalDepartmentPhrases); ok {
		return true
	}
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		for _, want := range criticalDepartmentTokens {
			if tok == want {
				return true
			}
		}
	}
	return false
}

func matchAny(s string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return kw, true
		}
	}
	return "", false
}
