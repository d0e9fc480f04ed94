package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func discount(t DiscountType, v int64) (*DiscountType, *decimal.Decimal) {
	d := decimal.NewFromInt(v)
	return &t, &d
}

func TestEffectivePrice(t *testing.T) {
	pct, pctVal := discount(DiscountPercentage, 25)
	nom, nomVal := discount(DiscountNominal, 30000)
	huge, hugeVal := discount(DiscountNominal, 500000)
	third, thirdVal := discount(DiscountPercentage, 33)

	cases := []struct {
		name   string
		course Course
		want   int64
	}{
		{"no discount", Course{Price: decimal.NewFromInt(100000)}, 100000},
		{"percentage", Course{Price: decimal.NewFromInt(100000), DiscountType: pct, Discount: pctVal}, 75000},
		{"nominal", Course{Price: decimal.NewFromInt(100000), DiscountType: nom, Discount: nomVal}, 70000},
		{"floored at zero", Course{Price: decimal.NewFromInt(100000), DiscountType: huge, Discount: hugeVal}, 0},
		{"rounded to rupiah", Course{Price: decimal.NewFromInt(99999), DiscountType: third, Discount: thirdVal}, 66999},
		{"type without amount", Course{Price: decimal.NewFromInt(5000), DiscountType: pct}, 5000},
		{"free course", Course{Price: decimal.Zero}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.course.EffectivePrice()
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Errorf("EffectivePrice() = %s, want %d", got, tc.want)
			}
		})
	}
}

func TestContentURL(t *testing.T) {
	base := "https://jadipraktisi.test"
	cases := map[CourseType]string{
		CourseTypeCBT:          base + "/student/cbt-instruction/7",
		CourseTypeCourse:       base + "/student/course-content/7",
		CourseTypeLiveTeaching: base + "/student/live-event/7",
	}
	for typ, want := range cases {
		c := Course{ID: 7, Type: typ}
		if got := c.ContentURL(base); got != want {
			t.Errorf("%s: got %q, want %q", typ, got, want)
		}
	}
}

func TestOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Transaction
		want    TransactionStatus
		uniform bool
	}{
		{"empty", nil, StatusPending, true},
		{"uniform paid", []Transaction{{Status: StatusPaid}, {Status: StatusPaid}}, StatusPaid, true},
		{"paid beside pending", []Transaction{{Status: StatusPending}, {Status: StatusPaid}}, StatusPaid, false},
		{"paid beats failed", []Transaction{{Status: StatusFailed}, {Status: StatusPaid}}, StatusPaid, false},
		{"failed beside pending", []Transaction{{Status: StatusPending}, {Status: StatusFailed}}, StatusFailed, false},
		{"all pending", []Transaction{{Status: StatusPending}, {Status: StatusPending}}, StatusPending, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderStatus(tt.rows); got != tt.want {
				t.Errorf("OrderStatus = %s, want %s", got, tt.want)
			}
			if got := Uniform(tt.rows); got != tt.uniform {
				t.Errorf("Uniform = %v, want %v", got, tt.uniform)
			}
		})
	}
}
