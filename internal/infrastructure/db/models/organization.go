package models

import "time"

type Organization struct {
	ID               string  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name             string  `gorm:"size:255;not null"`
	OrganizationType string  `gorm:"size:32;not null;default:unknown"`
	Priority         *string `gorm:"size:1"`
	Phone            string  `gorm:"size:50"`
	Email            string  `gorm:"size:255"`
	Website          string  `gorm:"size:500"`
	LinkedInURL      string  `gorm:"column:linkedin_url;size:500"`
	Address          string  `gorm:"size:500"`
	City             string  `gorm:"size:100"`
	State            string  `gorm:"size:100"`
	PostalCode       string  `gorm:"size:20"`
	Description      string  `gorm:"type:text"`
	SalesID          *int64  `gorm:"index"`
	SegmentID        *string `gorm:"type:uuid;index"`
	Tags             []Tag   `gorm:"many2many:organization_tags"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Organization) TableName() string {
	return "organizations"
}

type Tag struct {
	ID        string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Color     string `gorm:"size:32;not null;default:gray"`
	CreatedAt time.Time
}

func (Tag) TableName() string {
	return "tags"
}

// Sale is an account manager. Its id is numeric unlike the other resources.
type Sale struct {
	ID        int64  `gorm:"primaryKey"`
	FirstName string `gorm:"size:120;not null"`
	LastName  string `gorm:"size:120;not null;default:''"`
	Email     string `gorm:"size:320;not null"`
	IsAdmin   bool   `gorm:"not null;default:false"`
	Disabled  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (Sale) TableName() string {
	return "sales"
}

type Segment struct {
	ID        string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

func (Segment) TableName() string {
	return "segments"
}
