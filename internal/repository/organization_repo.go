package repository

import (
	"context"
	"errors"

	"blood-request-routing/internal/models"

	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepo(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// FindByIDAndType retrieves an active organization of the given type
func (r *OrganizationRepository) FindByIDAndType(ctx context.Context, id uint, orgType models.OrganizationType) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).
		Where("id = ? AND type = ? AND is_active = ?", id, orgType, true).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

// ListByType retrieves all active organizations of a type
func (r *OrganizationRepository) ListByType(ctx context.Context, orgType models.OrganizationType) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", orgType, true).
		Order("name ASC").
		Find(&orgs).Error
	return orgs, err
}

// CreateOrganization creates a new organization
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}
