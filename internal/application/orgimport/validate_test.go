package orgimport_test

import (
	"testing"

	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
)

func TestValidateRowsPartitionsAndKeepsIndex(t *testing.T) {
	t.Parallel()

	rows := []orgimport.IndexedRow{
		{OriginalIndex: 0, Row: orgimport.MappedRow{orgimport.FieldName: "Acme", orgimport.FieldPriority: "A"}},
		{OriginalIndex: 3, Row: orgimport.MappedRow{orgimport.FieldName: "Globex", orgimport.FieldPriority: "E"}},
		{OriginalIndex: 4, Row: orgimport.MappedRow{orgimport.FieldPriority: "B"}},
		{OriginalIndex: 7, Row: orgimport.MappedRow{
			orgimport.FieldName:             "Initech",
			orgimport.FieldOrganizationType: "distributor",
			orgimport.FieldWebsite:          "https://initech.example",
			orgimport.FieldEmail:            "info@initech.example",
		}},
	}

	outcome := orgimport.ValidateRows(rows)

	if len(outcome.Successful) != 2 || len(outcome.Failed) != 2 {
		t.Fatalf("expected 2/2 partition, got %d/%d", len(outcome.Successful), len(outcome.Failed))
	}
	if outcome.Successful[1].OriginalIndex != 7 {
		t.Fatalf("expected original index 7, got %d", outcome.Successful[1].OriginalIndex)
	}

	priorityFail := outcome.Failed[0]
	if priorityFail.OriginalIndex != 3 {
		t.Fatalf("expected original index 3, got %d", priorityFail.OriginalIndex)
	}
	if len(priorityFail.Errors) != 1 || priorityFail.Errors[0].Field != "priority" {
		t.Fatalf("unexpected errors: %#v", priorityFail.Errors)
	}
	if priorityFail.Errors[0].Message != "must be one of: A, B, C, D" {
		t.Fatalf("unexpected message: %q", priorityFail.Errors[0].Message)
	}

	nameFail := outcome.Failed[1]
	if nameFail.Errors[0].Field != "name" || nameFail.Errors[0].Message != "is required" {
		t.Fatalf("unexpected name error: %#v", nameFail.Errors)
	}
}

func TestValidateRowsRejectsBadEnumsAndURLs(t *testing.T) {
	t.Parallel()

	outcome := orgimport.ValidateRows([]orgimport.IndexedRow{{Row: orgimport.MappedRow{
		orgimport.FieldName:             "Acme",
		orgimport.FieldOrganizationType: "vendor",
		orgimport.FieldWebsite:          "not a url",
		orgimport.FieldEmail:            "nope",
	}}})

	if len(outcome.Failed) != 1 {
		t.Fatalf("expected 1 failed row, got %d", len(outcome.Failed))
	}
	fields := map[string]bool{}
	for _, fe := range outcome.Failed[0].Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"organization_type", "website", "email"} {
		if !fields[want] {
			t.Fatalf("expected error on %s, got %#v", want, outcome.Failed[0].Errors)
		}
	}
}

func TestApplyDataQualityTransformations(t *testing.T) {
	t.Parallel()

	in := []orgimport.IndexedRow{
		{OriginalIndex: 0, Row: orgimport.MappedRow{orgimport.FieldName: "Acme", orgimport.FieldPriority: "a - highest"}},
		{OriginalIndex: 1, Row: orgimport.MappedRow{orgimport.FieldName: "Globex", orgimport.FieldPriority: "B"}},
		{OriginalIndex: 2, Row: orgimport.MappedRow{
			orgimport.FieldName:             "Initech",
			orgimport.FieldOrganizationType: "Customer",
			orgimport.FieldWebsite:          "initech.example",
		}},
		{OriginalIndex: 3, Row: orgimport.MappedRow{orgimport.FieldName: "Hooli", orgimport.FieldPriority: "Best"}},
	}

	result := orgimport.ApplyDataQualityTransformations(in)

	if result.TransformationCount != 2 {
		t.Fatalf("expected 2 transformed rows, got %d", result.TransformationCount)
	}
	if !result.WasTransformed(0) || result.WasTransformed(1) || !result.WasTransformed(2) || result.WasTransformed(3) {
		t.Fatal("unexpected WasTransformed flags")
	}
	if got := result.Rows[0].Row[orgimport.FieldPriority]; got != "A" {
		t.Fatalf("expected priority A, got %q", got)
	}
	if got := result.Rows[2].Row[orgimport.FieldWebsite]; got != "https://initech.example" {
		t.Fatalf("unexpected website: %q", got)
	}
	if got := result.Rows[2].Row[orgimport.FieldOrganizationType]; got != "customer" {
		t.Fatalf("unexpected type: %q", got)
	}
	if got := result.Rows[3].Row[orgimport.FieldPriority]; got != "Best" {
		t.Fatalf("unrecognized priority must be kept, got %q", got)
	}
	if in[0].Row[orgimport.FieldPriority] != "a - highest" {
		t.Fatal("input rows must not be mutated")
	}
	if result.Rows[2].OriginalIndex != 2 {
		t.Fatalf("expected original index 2, got %d", result.Rows[2].OriginalIndex)
	}
}
