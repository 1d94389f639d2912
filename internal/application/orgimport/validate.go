package orgimport

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

// OrganizationInput is the typed form of a mapped row that validation runs
// against. Relation columns still hold the raw CSV text here.
type OrganizationInput struct {
	Name             string `json:"name" validate:"required,max=255"`
	OrganizationType string `json:"organization_type" validate:"omitempty,oneof=customer prospect principal distributor unknown"`
	Priority         string `json:"priority" validate:"omitempty,oneof=A B C D"`
	Phone            string `json:"phone" validate:"omitempty,max=50"`
	Email            string `json:"email" validate:"omitempty,email,max=255"`
	Website          string `json:"website" validate:"omitempty,url,max=500"`
	LinkedInURL      string `json:"linkedin_url" validate:"omitempty,url,max=500"`
	Address          string `json:"address" validate:"omitempty,max=500"`
	City             string `json:"city" validate:"omitempty,max=100"`
	State            string `json:"state" validate:"omitempty,max=100"`
	PostalCode       string `json:"postal_code" validate:"omitempty,max=20"`
	Description      string `json:"description" validate:"omitempty,max=1000"`
	Tags             string `json:"tags" validate:"omitempty,max=1000"`
	AccountManager   string `json:"sales_id" validate:"omitempty,max=255"`
	Segment          string `json:"segment_id" validate:"omitempty,max=255"`
}

func NewOrganizationInput(row MappedRow) OrganizationInput {
	return OrganizationInput{
		Name:             row.Name(),
		OrganizationType: row[FieldOrganizationType],
		Priority:         row[FieldPriority],
		Phone:            row[FieldPhone],
		Email:            row[FieldEmail],
		Website:          row[FieldWebsite],
		LinkedInURL:      row[FieldLinkedInURL],
		Address:          row[FieldAddress],
		City:             row[FieldCity],
		State:            row[FieldState],
		PostalCode:       row[FieldPostalCode],
		Description:      row[FieldDescription],
		Tags:             row[FieldTags],
		AccountManager:   row[FieldSalesID],
		Segment:          row[FieldSegmentID],
	}
}

type ValidRow struct {
	Input         OrganizationInput
	Row           MappedRow
	OriginalIndex int
}

type InvalidRow struct {
	Row           MappedRow
	Errors        []domain.FieldError
	OriginalIndex int
}

type ValidationOutcome struct {
	Successful []ValidRow
	Failed     []InvalidRow
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRows partitions rows into valid and invalid ones. Every input row
// ends up in exactly one partition with its OriginalIndex intact.
func ValidateRows(rows []IndexedRow) ValidationOutcome {
	var out ValidationOutcome
	for _, row := range rows {
		input := NewOrganizationInput(row.Row)
		if errs := validateInput(input); len(errs) > 0 {
			out.Failed = append(out.Failed, InvalidRow{
				Row:           row.Row,
				Errors:        errs,
				OriginalIndex: row.OriginalIndex,
			})
			continue
		}
		out.Successful = append(out.Successful, ValidRow{
			Input:         input,
			Row:           row.Row,
			OriginalIndex: row.OriginalIndex,
		})
	}
	return out
}

func validateInput(input OrganizationInput) []domain.FieldError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldError{{Field: "general", Message: err.Error()}}
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
