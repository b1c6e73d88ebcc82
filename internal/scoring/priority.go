package scoring

import (
	"math"
	"time"

	"blood-request-routing/internal/models"
)

// Score range and category boundaries. A score belongs to the highest band whose threshold it reaches.
const (
	MinScore = 0
	MaxScore = 255

	CriticalThreshold = 170
	HighThreshold     = 110
	MediumThreshold   = 70
)

// Factor limits
const (
	MaxAvailabilityScore       = 45
	NeutralAvailabilityScore   = 22
	MaxTimeScore               = 50
	TimePointsPerHour          = 5
	DefaultStockReferenceUnits = 10
)

// Action strings attached to CRITICAL and HIGH priorities
const (
	CriticalAction = "Immediate action required: dispatch within 15 minutes"
	HighAction     = "Urgent attention required: respond within 45 minutes"
)

var urgencyScores = map[models.Urgency]int{
	models.UrgencyCritical: 100,
	models.UrgencyHigh:     70,
	models.UrgencyMedium:   40,
	models.UrgencyLow:      15,
}

// RarityScores is the fixed scarcity weighting of blood groups
var RarityScores = map[models.BloodGroup]int{
	models.BloodGroupABNeg: 60,
	models.BloodGroupONeg:  55,
	models.BloodGroupBNeg:  50,
	models.BloodGroupANeg:  45,
	models.BloodGroupABPos: 35,
	models.BloodGroupBPos:  25,
	models.BloodGroupAPos:  15,
	models.BloodGroupOPos:  10,
}

// Thresholds exposes the category boundaries for clients
type Thresholds struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Max      int `json:"max"`
}

// CategoryThresholds returns the category boundaries
func CategoryThresholds() Thresholds {
	return Thresholds{
		Critical: CriticalThreshold,
		High:     HighThreshold,
		Medium:   MediumThreshold,
		Max:      MaxScore,
	}
}

// PriorityCalculator combines urgency, rarity, waiting time and stock scarcity into a score.
// It holds only configuration and is safe for concurrent use.
type PriorityCalculator struct {
	stockReferenceUnits int
	now                 func() time.Time
}

// NewPriorityCalculator creates a calculator. stockReferenceUnits is the stock level at which
// the availability factor is half its maximum; now defaults to time.Now.
func NewPriorityCalculator(stockReferenceUnits int, now func() time.Time) *PriorityCalculator {
	if stockReferenceUnits <= 0 {
		stockReferenceUnits = DefaultStockReferenceUnits
	}
	if now == nil {
		now = time.Now
	}
	return &PriorityCalculator{
		stockReferenceUnits: stockReferenceUnits,
		now:                 now,
	}
}

// Calculate scores a request. availability may be nil when stock could not be read.
func (p *PriorityCalculator) Calculate(urgency models.Urgency, group models.BloodGroup, createdAt time.Time, availability *models.BloodAvailability) models.Priority {
	now := p.now().UTC()

	breakdown := models.PriorityBreakdown{
		UrgencyScore:      urgencyScores[urgency],
		RarityScore:       RarityScores[group],
		TimeScore:         timeScore(createdAt, now),
		AvailabilityScore: p.availabilityScore(group, availability),
	}

	score := clamp(
		breakdown.UrgencyScore+breakdown.RarityScore+breakdown.TimeScore+breakdown.AvailabilityScore,
		MinScore, MaxScore,
	)
	category := CategoryFor(score)

	return models.Priority{
		Score:          score,
		Category:       category,
		Breakdown:      breakdown,
		CalculatedAt:   &now,
		ActionRequired: ActionRequired(category),
	}
}

// Enrich attaches a freshly calculated priority to the request
func (p *PriorityCalculator) Enrich(req *models.BloodRequest, availability *models.BloodAvailability) *models.BloodRequest {
	req.Priority = p.Calculate(req.Urgency, req.BloodGroup, req.CreatedAt, availability)
	return req
}

func (p *PriorityCalculator) availabilityScore(group models.BloodGroup, a *models.BloodAvailability) int {
	if a == nil || a.TotalUnits < 0 || (a.BloodGroup != "" && a.BloodGroup != group) {
		return NeutralAvailabilityScore
	}
	ref := float64(p.stockReferenceUnits)
	return int(math.Round(MaxAvailabilityScore * ref / (ref + float64(a.TotalUnits))))
}

func timeScore(createdAt, now time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return 0
	}
	hours := int(elapsed / time.Hour)
	if hours >= MaxTimeScore/TimePointsPerHour {
		return MaxTimeScore
	}
	return hours * TimePointsPerHour
}

// CategoryFor maps a score onto its band
func CategoryFor(score int) models.PriorityCategory {
	switch {
	case score >= CriticalThreshold:
		return models.PriorityCritical
	case score >= HighThreshold:
		return models.PriorityHigh
	case score >= MediumThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// ActionRequired returns the call to action for a category, empty below HIGH
func ActionRequired(category models.PriorityCategory) string {
	switch category {
	case models.PriorityCritical:
		return CriticalAction
	case models.PriorityHigh:
		return HighAction
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
