package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type OrganizationQueryRepository struct {
	db *gorm.DB
}

func NewOrganizationQueryRepository(db *gorm.DB) *OrganizationQueryRepository {
	return &OrganizationQueryRepository{db: db}
}

func (r *OrganizationQueryRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var row models.Organization

	err := r.db.WithContext(ctx).
		Preload("Tags").
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization by id: %w", err)
	}

	tags := make([]domain.Tag, 0, len(row.Tags))
	for _, tag := range row.Tags {
		tags = append(tags, domain.Tag{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}

	org := &domain.Organization{
		ID:               row.ID,
		Name:             row.Name,
		OrganizationType: domain.Type(row.OrganizationType),
		Phone:            row.Phone,
		Email:            row.Email,
		Website:          row.Website,
		LinkedInURL:      row.LinkedInURL,
		Address:          row.Address,
		City:             row.City,
		State:            row.State,
		PostalCode:       row.PostalCode,
		Description:      row.Description,
		SalesID:          row.SalesID,
		SegmentID:        row.SegmentID,
		Tags:             tags,
		CreatedAt:        row.CreatedAt,
	}
	if row.Priority != nil {
		org.Priority = domain.Priority(*row.Priority)
	}

	return org, nil
}
