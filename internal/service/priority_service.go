package service

import (
	"context"

	"blood-request-routing/internal/models"
	"blood-request-routing/internal/scoring"

	"go.uber.org/zap"
)

// PriorityService looks up stock availability and scores requests with it
type PriorityService struct {
	stock      StockStore
	cache      AvailabilityCache
	calculator *scoring.PriorityCalculator
	log        *zap.Logger
}

// NewPriorityService creates a priority service. cache may be nil.
func NewPriorityService(stock StockStore, cache AvailabilityCache, calculator *scoring.PriorityCalculator, log *zap.Logger) *PriorityService {
	return &PriorityService{
		stock:      stock,
		cache:      cache,
		calculator: calculator,
		log:        log,
	}
}

// GetBloodAvailability returns the current stock snapshot for a group across all banks
func (s *PriorityService) GetBloodAvailability(ctx context.Context, group models.BloodGroup) (*models.BloodAvailability, error) {
	if !group.IsValid() {
		return nil, validationError("invalid blood group %q", group)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, group)
		if err != nil {
			s.log.Warn("availability cache read failed", zap.String("blood_group", string(group)), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	availability, err := s.stock.Availability(ctx, group)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, availability); err != nil {
			s.log.Warn("availability cache write failed", zap.String("blood_group", string(group)), zap.Error(err))
		}
	}
	return availability, nil
}

// EnrichRequestWithPriority scores the request. An availability lookup failure
// falls back to a neutral availability factor rather than failing the caller.
func (s *PriorityService) EnrichRequestWithPriority(ctx context.Context, req *models.BloodRequest) *models.BloodRequest {
	availability, err := s.GetBloodAvailability(ctx, req.BloodGroup)
	if err != nil {
		s.log.Warn("availability unavailable, scoring with neutral stock factor",
			zap.String("blood_group", string(req.BloodGroup)), zap.Error(err))
		availability = nil
	}
	return s.calculator.Enrich(req, availability)
}

// InvalidateAvailability drops any cached snapshot for a group after its stock changed
func (s *PriorityService) InvalidateAvailability(ctx context.Context, group models.BloodGroup) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, group); err != nil {
		s.log.Warn("availability cache invalidation failed", zap.String("blood_group", string(group)), zap.Error(err))
	}
}
