package organization

import "time"

type Priority string

const (
	PriorityA Priority = "A"
	PriorityB Priority = "B"
	PriorityC Priority = "C"
	PriorityD Priority = "D"
)

type Type string

const (
	TypeCustomer    Type = "customer"
	TypeProspect    Type = "prospect"
	TypePrincipal   Type = "principal"
	TypeDistributor Type = "distributor"
	TypeUnknown     Type = "unknown"
)

func Priorities() []Priority {
	return []Priority{PriorityA, PriorityB, PriorityC, PriorityD}
}

func Types() []Type {
	return []Type{TypeCustomer, TypeProspect, TypePrincipal, TypeDistributor, TypeUnknown}
}

type Tag struct {
	ID    string
	Name  string
	Color string
}

type Organization struct {
	ID               string
	Name             string
	OrganizationType Type
	Priority         Priority
	Phone            string
	Email            string
	Website          string
	LinkedInURL      string
	Address          string
	City             string
	State            string
	PostalCode       string
	Description      string
	SalesID          *int64
	SegmentID        *string
	Tags             []Tag
	CreatedAt        time.Time
}
