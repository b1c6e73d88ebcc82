package service

import (
	"context"
	"errors"
	"sort"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/repository"
	"blood-request-routing/pkg/geo"
)

// DistanceInfo is the distance between a hospital and a blood bank
type DistanceInfo struct {
	geo.Distance
	Category  geo.Category `json:"category"`
	Formatted string       `json:"formatted"`
}

// BankCandidate is a blood bank able to serve a request, with its distance when known
type BankCandidate struct {
	BloodBank      models.OrganizationDetails `json:"blood_bank"`
	AvailableUnits int                        `json:"available_units"`
	Distance       *DistanceInfo              `json:"distance,omitempty"`
}

// NearbyBanks lists candidate banks for a hospital, closest first
type NearbyBanks struct {
	Hospital      models.OrganizationDetails `json:"hospital"`
	BloodGroup    models.BloodGroup          `json:"blood_group"`
	MinUnits      int                        `json:"min_units"`
	Candidates    []BankCandidate            `json:"candidates"`
	DistanceError string                     `json:"distance_error,omitempty"`
}

// RoutingService ranks blood banks for a hospital by stock and distance
type RoutingService struct {
	stock StockStore
	orgs  OrganizationLookup
}

func NewRoutingService(stock StockStore, orgs OrganizationLookup) *RoutingService {
	return &RoutingService{stock: stock, orgs: orgs}
}

// NearbyBloodBanks returns active banks holding at least minUnits of the group.
// Banks with a known distance come first, nearest first; the rest follow by units held.
func (s *RoutingService) NearbyBloodBanks(ctx context.Context, hospitalID uint, group models.BloodGroup, minUnits, limit int) (*NearbyBanks, error) {
	if !group.IsValid() {
		return nil, validationError("invalid blood group %q", group)
	}
	if minUnits < 1 {
		minUnits = 1
	}

	hospital, err := s.orgs.FindByIDAndType(ctx, hospitalID, models.OrganizationHospital)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, &NotFoundError{Resource: "hospital"}
		}
		return nil, err
	}

	banks, err := s.orgs.ListByType(ctx, models.OrganizationBloodBank)
	if err != nil {
		return nil, err
	}
	units, err := s.stock.UnitsByBank(ctx, group)
	if err != nil {
		return nil, err
	}

	result := &NearbyBanks{
		Hospital:   hospital.Details(),
		BloodGroup: group,
		MinUnits:   minUnits,
		Candidates: []BankCandidate{},
	}
	hospitalLoc, hasLoc := hospital.Location()
	if !hasLoc {
		result.DistanceError = "hospital location coordinates not available"
	}

	for i := range banks {
		bank := &banks[i]
		if units[bank.ID] < minUnits {
			continue
		}
		candidate := BankCandidate{BloodBank: bank.Details(), AvailableUnits: units[bank.ID]}
		if hasLoc {
			if info, err := distanceBetween(hospitalLoc, bank); err == nil {
				candidate.Distance = info
			}
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		switch {
		case a.Distance != nil && b.Distance != nil:
			return a.Distance.Kilometers < b.Distance.Kilometers
		case a.Distance != nil:
			return true
		case b.Distance != nil:
			return false
		default:
			return a.AvailableUnits > b.AvailableUnits
		}
	})

	if limit > 0 && len(result.Candidates) > limit {
		result.Candidates = result.Candidates[:limit]
	}
	return result, nil
}

// distanceBetween measures from a point to an organization's location
func distanceBetween(from geo.Point, org *models.Organization) (*DistanceInfo, error) {
	to, ok := org.Location()
	if !ok {
		return nil, geo.ErrInvalidCoordinate
	}
	d, err := geo.Calculate(from, to)
	if err != nil {
		return nil, err
	}
	return &DistanceInfo{
		Distance:  d,
		Category:  geo.CategoryFor(d.Kilometers),
		Formatted: geo.Format(d),
	}, nil
}
