package scoring

import (
	"time"

	"blood-request-routing/internal/models"
)

// PriorityView is the client-facing rendering of a stored priority
type PriorityView struct {
	Score          int                      `json:"score"`
	MaxScore       int                      `json:"max_score"`
	Category       models.PriorityCategory  `json:"category"`
	Label          string                   `json:"label"`
	ResponseTime   string                   `json:"response_time"`
	Breakdown      models.PriorityBreakdown `json:"breakdown"`
	CalculatedAt   *time.Time               `json:"calculated_at"`
	ActionRequired string                   `json:"action_required,omitempty"`
}

// LegendEntry describes one category for the UI legend
type LegendEntry struct {
	Category     models.PriorityCategory `json:"category"`
	Label        string                  `json:"label"`
	MinScore     int                     `json:"min_score"`
	ResponseTime string                  `json:"response_time"`
}

var categoryLabels = map[models.PriorityCategory]string{
	models.PriorityCritical: "Critical",
	models.PriorityHigh:     "High",
	models.PriorityMedium:   "Medium",
	models.PriorityLow:      "Low",
}

var responseTimes = map[models.PriorityCategory]string{
	models.PriorityCritical: "< 15 min",
	models.PriorityHigh:     "15-45 min",
	models.PriorityMedium:   "45 min - 2 hours",
	models.PriorityLow:      "2+ hours",
}

// FormatForResponse renders the priority stored on a request without recomputing anything
func FormatForResponse(req *models.BloodRequest) PriorityView {
	p := req.Priority
	return PriorityView{
		Score:          p.Score,
		MaxScore:       MaxScore,
		Category:       p.Category,
		Label:          categoryLabels[p.Category],
		ResponseTime:   responseTimes[p.Category],
		Breakdown:      p.Breakdown,
		CalculatedAt:   p.CalculatedAt,
		ActionRequired: p.ActionRequired,
	}
}

// Legend lists the categories from most to least urgent
func Legend() []LegendEntry {
	return []LegendEntry{
		{models.PriorityCritical, categoryLabels[models.PriorityCritical], CriticalThreshold, responseTimes[models.PriorityCritical]},
		{models.PriorityHigh, categoryLabels[models.PriorityHigh], HighThreshold, responseTimes[models.PriorityHigh]},
		{models.PriorityMedium, categoryLabels[models.PriorityMedium], MediumThreshold, responseTimes[models.PriorityMedium]},
		{models.PriorityLow, categoryLabels[models.PriorityLow], MinScore, responseTimes[models.PriorityLow]},
	}
}
