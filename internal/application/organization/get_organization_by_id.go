package organization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

type GetOrganizationByIDInput struct {
	ID string
}

type OrganizationTagOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type GetOrganizationByIDOutput struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	OrganizationType string                  `json:"organization_type,omitempty"`
	Priority         string                  `json:"priority,omitempty"`
	Phone            string                  `json:"phone,omitempty"`
	Email            string                  `json:"email,omitempty"`
	Website          string                  `json:"website,omitempty"`
	LinkedInURL      string                  `json:"linkedin_url,omitempty"`
	Address          string                  `json:"address,omitempty"`
	City             string                  `json:"city,omitempty"`
	State            string                  `json:"state,omitempty"`
	PostalCode       string                  `json:"postal_code,omitempty"`
	Description      string                  `json:"description,omitempty"`
	SalesID          *int64                  `json:"sales_id,omitempty"`
	SegmentID        *string                 `json:"segment_id,omitempty"`
	Tags             []OrganizationTagOutput `json:"tags"`
	CreatedAt        time.Time               `json:"created_at"`
}

type GetOrganizationByID interface {
	Execute(ctx context.Context, in GetOrganizationByIDInput) (GetOrganizationByIDOutput, error)
}

type getOrganizationByID struct {
	repo domain.OrganizationQueryRepository
}

func NewGetOrganizationByID(repo domain.OrganizationQueryRepository) GetOrganizationByID {
	return &getOrganizationByID{repo: repo}
}

func (uc *getOrganizationByID) Execute(ctx context.Context, in GetOrganizationByIDInput) (GetOrganizationByIDOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetOrganizationByIDOutput{}, ErrInvalidOrganizationID
	}

	org, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			return GetOrganizationByIDOutput{}, ErrOrganizationNotFound
		}
		return GetOrganizationByIDOutput{}, fmt.Errorf("%w: %v", ErrGetOrganizationByID, err)
	}

	tags := make([]OrganizationTagOutput, 0, len(org.Tags))
	for _, tag := range org.Tags {
		tags = append(tags, OrganizationTagOutput{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}

	return GetOrganizationByIDOutput{
		ID:               org.ID,
		Name:             org.Name,
		OrganizationType: string(org.OrganizationType),
		Priority:         string(org.Priority),
		Phone:            org.Phone,
		Email:            org.Email,
		Website:          org.Website,
		LinkedInURL:      org.LinkedInURL,
		Address:          org.Address,
		City:             org.City,
		State:            org.State,
		PostalCode:       org.PostalCode,
		Description:      org.Description,
		SalesID:          org.SalesID,
		SegmentID:        org.SegmentID,
		Tags:             tags,
		CreatedAt:        org.CreatedAt,
	}, nil
}
