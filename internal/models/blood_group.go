package models

// BloodGroup is one of the eight ABO/Rh types
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every supported group in display order
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

// IsValid reports whether g is a supported blood group
func (g BloodGroup) IsValid() bool {
	for _, known := range BloodGroups {
		if g == known {
			return true
		}
	}
	return false
}

// Urgency is the clinical severity tier of a request
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

var urgencyOrder = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

// Rank orders tiers from LOW (0) to CRITICAL (3); unknown values rank as -1
func (u Urgency) Rank() int {
	for i, tier := range urgencyOrder {
		if u == tier {
			return i
		}
	}
	return -1
}

// Escalate returns the next tier up, CRITICAL stays CRITICAL
func (u Urgency) Escalate() Urgency {
	r := u.Rank()
	if r < 0 {
		return UrgencyMedium
	}
	if r >= len(urgencyOrder)-1 {
		return UrgencyCritical
	}
	return urgencyOrder[r+1]
}

// Level is the numeric priority shown to users: 1 for CRITICAL through 4 for LOW
func (u Urgency) Level() int {
	r := u.Rank()
	if r < 0 {
		return 0
	}
	return len(urgencyOrder) - r
}

// IsValid reports whether u is a known tier
func (u Urgency) IsValid() bool {
	return u.Rank() >= 0
}

// CollectionMethod describes how fulfilled units leave the blood bank
type CollectionMethod string

const (
	CollectionPickup   CollectionMethod = "PICKUP"
	CollectionDelivery CollectionMethod = "DELIVERY"
)
