package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CourseType string

const (
	CourseTypeCourse       CourseType = "Course"
	CourseTypeLiveTeaching CourseType = "Live_Teaching"
	CourseTypeCBT          CourseType = "CBT"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountNominal    DiscountType = "NOMINAL"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "DRAFT"
	CoursePublished CourseStatus = "PUBLISHED"
)

// Course is a sellable catalog item. Every course has at least one seat.
type Course struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Title            string           `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Type             CourseType       `gorm:"type:varchar(20);not null;default:Course" json:"type" validate:"required,oneof=Course Live_Teaching CBT"`
	CourseLevel      string           `gorm:"type:varchar(20)" json:"course_level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCE EXPERT"`
	MaxStudent       int              `gorm:"not null" json:"max_student" validate:"min=1"`
	ShortDescription string           `gorm:"type:text" json:"short_description"`
	Price            decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"price" validate:"gte=0"`
	DiscountType     *DiscountType    `gorm:"type:varchar(20)" json:"discount_type" validate:"omitempty,oneof=PERCENTAGE NOMINAL"`
	Discount         *decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount" validate:"omitempty,gte=0"`
	Status           CourseStatus     `gorm:"type:varchar(20);not null;default:DRAFT;index" json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Audit
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectivePrice is the post-discount price in whole rupiah, never negative.
func (c *Course) EffectivePrice() decimal.Decimal {
	price := c.Price
	if c.DiscountType != nil && c.Discount != nil {
		switch *c.DiscountType {
		case DiscountPercentage:
			price = price.Sub(price.Mul(*c.Discount).Div(decimal.NewFromInt(100)))
		case DiscountNominal:
			price = price.Sub(*c.Discount)
		}
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Round(0)
}

// ContentURL is the student page that opens the purchased content.
func (c *Course) ContentURL(webURL string) string {
	switch c.Type {
	case CourseTypeCBT:
		return fmt.Sprintf("%s/student/cbt-instruction/%d", webURL, c.ID)
	case CourseTypeLiveTeaching:
		return fmt.Sprintf("%s/student/live-event/%d", webURL, c.ID)
	default:
		return fmt.Sprintf("%s/student/course-content/%d", webURL, c.ID)
	}
}
