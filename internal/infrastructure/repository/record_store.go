package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 25
	maxPerPage     = 1000

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgStringTooLong       = "22001"
)

var errDryRunRollback = errors.New("dry run rollback")

// filterable lists the columns GetList may filter and sort on, per resource.
var filterable = map[string]map[string]bool{
	domain.ResourceOrganizations: {"id": true, "name": true, "city": true, "organization_type": true, "priority": true},
	domain.ResourceTags:          {"id": true, "name": true},
	domain.ResourceSales:         {"id": true, "first_name": true, "last_name": true, "email": true},
	domain.ResourceSegments:      {"id": true, "name": true},
}

// constraintFields maps database constraints to the record field they guard.
var constraintFields = map[string]string{
	"tags_name_key":                 "name",
	"segments_name_key":             "name",
	"sales_email_key":               "email",
	"organizations_type_check":      "organization_type",
	"organizations_priority_check":  "priority",
	"organizations_sales_id_fkey":   "sales_id",
	"organizations_segment_id_fkey": "segment_id",
}

// RecordStore is the Postgres data provider behind the import pipeline.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Create inserts one record. With Meta.DryRun the insert runs inside a
// transaction that is always rolled back, so constraint errors still surface.
func (s *RecordStore) Create(ctx context.Context, resource string, params domain.CreateParams) (domain.Record, error) {
	var out domain.Record

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.create(tx, resource, params.Data)
		if err != nil {
			return err
		}
		out = rec
		if params.Meta.DryRun {
			return errDryRunRollback
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRunRollback) {
		return nil, translateError(resource, err)
	}
	return out, nil
}

func (s *RecordStore) create(tx *gorm.DB, resource string, data domain.Record) (domain.Record, error) {
	switch resource {
	case domain.ResourceOrganizations:
		org, err := organizationFromRecord(data)
		if err != nil {
			return nil, err
		}
		if err := tx.Omit("Tags.*").Create(&org).Error; err != nil {
			return nil, err
		}
		return organizationRecord(org), nil

	case domain.ResourceTags:
		tag := models.Tag{Name: stringValue(data, "name"), Color: stringValue(data, "color")}
		if tag.Color == "" {
			tag.Color = "gray"
		}
		if err := tx.Create(&tag).Error; err != nil {
			return nil, err
		}
		return tagRecord(tag), nil

	case domain.ResourceSales:
		sale := models.Sale{
			FirstName: stringValue(data, "first_name"),
			LastName:  stringValue(data, "last_name"),
			Email:     stringValue(data, "email"),
			IsAdmin:   boolValue(data, "is_admin"),
			Disabled:  boolValue(data, "disabled"),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return nil, err
		}
		return saleRecord(sale), nil

	case domain.ResourceSegments:
		segment := models.Segment{Name: stringValue(data, "name")}
		if err := tx.Create(&segment).Error; err != nil {
			return nil, err
		}
		return segmentRecord(segment), nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownResource, resource)
}

// GetList supports "<field>@in" filters with []string values and plain
// equality filters. Text comparisons are case-insensitive.
func (s *RecordStore) GetList(ctx context.Context, resource string, params domain.ListParams) ([]domain.Record, error) {
	columns, ok := filterable[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownResource, resource)
	}

	query := s.db.WithContext(ctx).Table(resource)
	for key, value := range params.Filter {
		field, op, _ := strings.Cut(key, "@")
		if !columns[field] || (op != "" && op != "in") {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFilter, key)
		}
		var err error
		if query, err = applyFilter(query, field, op, value); err != nil {
			return nil, err
		}
	}

	perPage := params.Pagination.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := params.Pagination.Page
	if page <= 0 {
		page = 1
	}
	query = query.Limit(perPage).Offset((page - 1) * perPage)

	order := "id ASC"
	if params.Sort.Field != "" {
		if !columns[params.Sort.Field] {
			return nil, fmt.Errorf("%w: sort %s", domain.ErrUnsupportedFilter, params.Sort.Field)
		}
		direction := "ASC"
		if strings.EqualFold(params.Sort.Order, "DESC") {
			direction = "DESC"
		}
		order = params.Sort.Field + " " + direction
	}
	query = query.Order(order)

	switch resource {
	case domain.ResourceOrganizations:
		var rows []models.Organization
		if err := query.Preload("Tags").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list organizations: %w", err)
		}
		return mapRecords(rows, organizationRecord), nil
	case domain.ResourceTags:
		var rows []models.Tag
		if err := query.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		return mapRecords(rows, tagRecord), nil
	case domain.ResourceSales:
		var rows []models.Sale
		if err := query.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list sales: %w", err)
		}
		return mapRecords(rows, saleRecord), nil
	default:
		var rows []models.Segment
		if err := query.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list segments: %w", err)
		}
		return mapRecords(rows, segmentRecord), nil
	}
}

func applyFilter(query *gorm.DB, field, op string, value any) (*gorm.DB, error) {
	if op == "in" {
		values, ok := value.([]string)
		if !ok {
			return nil, fmt.Errorf("%w: %s@in expects a list of strings", domain.ErrUnsupportedFilter, field)
		}
		if len(values) == 0 {
			return query.Where("1 = 0"), nil
		}
		if field == "id" {
			return query.Where("id::text IN ?", values), nil
		}
		lowered := make([]string, len(values))
		for i, v := range values {
			lowered[i] = strings.ToLower(strings.TrimSpace(v))
		}
		return query.Where("lower("+field+") IN ?", lowered), nil
	}

	if field == "id" {
		return query.Where("id::text = ?", fmt.Sprint(value)), nil
	}
	return query.Where("lower("+field+") = ?", strings.ToLower(fmt.Sprint(value))), nil
}

func mapRecords[T any](rows []T, toRecord func(T) domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out
}

func organizationFromRecord(data domain.Record) (models.Organization, error) {
	org := models.Organization{
		Name:             stringValue(data, "name"),
		OrganizationType: stringValue(data, "organization_type"),
		Phone:            stringValue(data, "phone"),
		Email:            stringValue(data, "email"),
		Website:          stringValue(data, "website"),
		LinkedInURL:      stringValue(data, "linkedin_url"),
		Address:          stringValue(data, "address"),
		City:             stringValue(data, "city"),
		State:            stringValue(data, "state"),
		PostalCode:       stringValue(data, "postal_code"),
		Description:      stringValue(data, "description"),
	}
	if org.OrganizationType == "" {
		org.OrganizationType = string(domain.TypeUnknown)
	}
	if v := stringValue(data, "priority"); v != "" {
		org.Priority = &v
	}
	if v := stringValue(data, "segment_id"); v != "" {
		org.SegmentID = &v
	}

	switch v := data["sales_id"].(type) {
	case nil:
	case int64:
		org.SalesID = &v
	case int:
		id := int64(v)
		org.SalesID = &id
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return models.Organization{}, &domain.FieldErrors{Errors: map[string]string{"sales_id": "must be a numeric id"}}
		}
		org.SalesID = &id
	default:
		return models.Organization{}, &domain.FieldErrors{Errors: map[string]string{"sales_id": "must be a numeric id"}}
	}

	if tagIDs, ok := data["tags"].([]string); ok {
		for _, id := range tagIDs {
			org.Tags = append(org.Tags, models.Tag{ID: id})
		}
	}
	return org, nil
}

func organizationRecord(org models.Organization) domain.Record {
	tagIDs := make([]string, 0, len(org.Tags))
	for _, tag := range org.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	rec := domain.Record{
		"id":                org.ID,
		"name":              org.Name,
		"organization_type": org.OrganizationType,
		"phone":             org.Phone,
		"email":             org.Email,
		"website":           org.Website,
		"linkedin_url":      org.LinkedInURL,
		"address":           org.Address,
		"city":              org.City,
		"state":             org.State,
		"postal_code":       org.PostalCode,
		"description":       org.Description,
		"tags":              tagIDs,
		"created_at":        org.CreatedAt.Format(time.RFC3339),
	}
	if org.Priority != nil {
		rec["priority"] = *org.Priority
	}
	if org.SalesID != nil {
		rec["sales_id"] = *org.SalesID
	}
	if org.SegmentID != nil {
		rec["segment_id"] = *org.SegmentID
	}
	return rec
}

func tagRecord(tag models.Tag) domain.Record {
	return domain.Record{"id": tag.ID, "name": tag.Name, "color": tag.Color}
}

func saleRecord(sale models.Sale) domain.Record {
	return domain.Record{
		"id":         sale.ID,
		"first_name": sale.FirstName,
		"last_name":  sale.LastName,
		"email":      sale.Email,
		"is_admin":   sale.IsAdmin,
		"disabled":   sale.Disabled,
	}
}

func segmentRecord(segment models.Segment) domain.Record {
	return domain.Record{"id": segment.ID, "name": segment.Name}
}

func stringValue(data domain.Record, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func boolValue(data domain.Record, key string) bool {
	v, _ := data[key].(bool)
	return v
}

// translateError turns constraint violations into field errors so the
// importer can report them against the offending column.
func translateError(resource string, err error) error {
	var fieldErrs *domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("create %s: %w", resource, err)
	}

	field := constraintFields[pgErr.ConstraintName]
	if field == "" {
		field = pgErr.ColumnName
	}
	if field == "" {
		return fmt.Errorf("create %s: %w", resource, err)
	}

	var message string
	switch pgErr.Code {
	case pgUniqueViolation:
		message = "already exists"
	case pgForeignKeyViolation:
		message = "references a record that does not exist"
	case pgCheckViolation:
		message = "has an invalid value"
	case pgNotNullViolation:
		message = "is required"
	case pgStringTooLong:
		message = "is too long"
	default:
		return fmt.Errorf("create %s: %w", resource, err)
	}
	return &domain.FieldErrors{Errors: map[string]string{field: message}}
}
