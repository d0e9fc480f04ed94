package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"course-commerce/internal/events"
	"course-commerce/internal/gateway"
	"course-commerce/internal/model"
	"course-commerce/internal/notify"
	"course-commerce/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxOrderIDAttempts = 5

// CartLine is one course in a checkout. Price is what the client displayed;
// the charged amount always comes from the catalog.
type CartLine struct {
	CourseID uint             `json:"course_id" validate:"required,gt=0"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

type CheckoutRequest struct {
	Courses     []CartLine       `json:"courses" validate:"required,min=1,dive"`
	Fullname    string           `json:"fullname" validate:"required"`
	Email       string           `json:"email" validate:"required,email"`
	Total       *decimal.Decimal `json:"total" validate:"required,gte=0"`
	PhoneNumber string           `json:"phone_number" validate:"required,max=16"`
	Notes       *string          `json:"notes"`
}

type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	IsFree      bool   `json:"is_free"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	URLContent  string `json:"url_content"`
}

type CheckoutService interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error)
}

type CheckoutOptions struct {
	WebURL string
	// Pending rows younger than this hold a seat. Zero counts paid rows only.
	ReserveWindow time.Duration
}

type checkoutService struct {
	db         *gorm.DB
	courseRepo repository.CourseRepository
	txRepo     repository.TransactionRepository
	gateway    gateway.Client
	mailer     notify.Mailer
	publisher  events.Publisher
	opts       CheckoutOptions
	now        func() time.Time
}

func NewCheckoutService(
	db *gorm.DB,
	courseRepo repository.CourseRepository,
	txRepo repository.TransactionRepository,
	gw gateway.Client,
	mailer notify.Mailer,
	publisher events.Publisher,
	opts CheckoutOptions,
) CheckoutService {
	return &checkoutService{
		db:         db,
		courseRepo: courseRepo,
		txRepo:     txRepo,
		gateway:    gw,
		mailer:     mailer,
		publisher:  publisher,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ids, err := cartCourseIDs(req.Courses)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &CheckoutResult{}
	var (
		rows    []model.Transaction
		courses map[uint]*model.Course
	)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Lock the courses so capacity check and insert happen as one step
		locked, err := s.courseRepo.LockByIDs(tx, sortedIDs(ids))
		if err != nil {
			return err
		}
		courses = make(map[uint]*model.Course, len(locked))
		for i := range locked {
			courses[locked[i].ID] = &locked[i]
		}
		for _, id := range ids {
			if _, ok := courses[id]; !ok {
				return validationReason("Course ID %d does not exist", id)
			}
		}

		// 2. Capacity
		if err := s.checkCapacity(tx, ids, courses, now); err != nil {
			return err
		}

		// 3. Order id
		orderID, err := s.allocateOrderID(tx, now)
		if err != nil {
			return err
		}
		result.OrderID = orderID

		// 4. Pending rows priced by the catalog
		rows = make([]model.Transaction, 0, len(req.Courses))
		for _, line := range req.Courses {
			course := courses[line.CourseID]
			price := course.EffectivePrice()
			if line.Price != nil && !line.Price.Equal(price) {
				log.Printf("Checkout %s: client price %s for course %d ignored, catalog price is %s",
					orderID, line.Price, course.ID, price)
			}
			rows = append(rows, model.Transaction{
				OrderID:     orderID,
				CourseID:    course.ID,
				Email:       req.Email,
				Fullname:    req.Fullname,
				PhoneNumber: req.PhoneNumber,
				Total:       price,
				Status:      model.StatusPending,
				Type:        model.TxMidtrans,
				Notes:       req.Notes,
			})
		}
		if err := s.txRepo.CreateBatch(tx, rows); err != nil {
			return err
		}

		// 5. The declared total must match what was written
		sum := model.OrderTotal(rows)
		if !sum.Equal(*req.Total) {
			log.Printf("Checkout %s: amount mismatch, rows sum %s, declared %s", orderID, sum, req.Total)
			return fmt.Errorf("%w: rows sum %s, declared %s", ErrAmountMismatch, sum, req.Total)
		}

		// 6a. Free order: paid immediately, no gateway
		if sum.IsZero() {
			if _, err := s.txRepo.UpdateStatusByOrderID(tx, orderID, model.StatusPaid, "free"); err != nil {
				return err
			}
			for i := range rows {
				rows[i].Status = model.StatusPaid
			}
			result.IsFree = true
			result.URLContent = courses[rows[0].CourseID].ContentURL(s.opts.WebURL)
			return nil
		}

		// 6b. Paid order: the charge decides commit or rollback
		charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
			TransactionDetails: gateway.TransactionDetails{
				OrderID:     orderID,
				GrossAmount: gateway.GrossAmount(sum),
			},
			CustomerDetails: gateway.CustomerDetails{
				FirstName: req.Fullname,
				Email:     req.Email,
				Phone:     req.PhoneNumber,
			},
		})
		if err != nil {
			log.Printf("Checkout %s: create charge failed: %v", orderID, err)
			return fmt.Errorf("create charge for %s: %w", orderID, err)
		}
		if charge.RedirectURL != "" {
			if err := s.txRepo.SetRedirectURL(tx, orderID, charge.RedirectURL); err != nil {
				return err
			}
			for i := range rows {
				rows[i].RedirectURL = &charge.RedirectURL
			}
		}
		result.Token = charge.Token
		result.RedirectURL = charge.RedirectURL
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrValidation) && !errors.Is(err, ErrCapacityExceeded) {
			log.Printf("Checkout for %s rolled back: %v", req.Email, err)
		}
		return nil, err
	}

	for i := range rows {
		rows[i].Course = courses[rows[i].CourseID]
	}
	s.afterCommit(ctx, rows, result)

	log.Printf("Checkout %s committed: %d line(s), free=%v", result.OrderID, len(rows), result.IsFree)
	return result, nil
}

func (s *checkoutService) checkCapacity(tx *gorm.DB, ids []uint, courses map[uint]*model.Course, now time.Time) error {
	var reservedSince time.Time
	if s.opts.ReserveWindow > 0 {
		reservedSince = now.Add(-s.opts.ReserveWindow).UTC()
	}

	var issues []CapacityIssue
	for _, id := range ids {
		course := courses[id]
		occupied, err := s.txRepo.CountOccupied(tx, id, reservedSince)
		if err != nil {
			return err
		}
		if occupied >= int64(course.MaxStudent) {
			issues = append(issues, CapacityIssue{CourseID: id, MaxStudent: course.MaxStudent})
		}
	}
	if len(issues) > 0 {
		return &CapacityExceededError{Issues: issues}
	}
	return nil
}

func (s *checkoutService) allocateOrderID(tx *gorm.DB, now time.Time) (string, error) {
	for i := 0; i < maxOrderIDAttempts; i++ {
		id, err := NewOrderID(now)
		if err != nil {
			return "", err
		}
		exists, err := s.txRepo.ExistsOrderID(tx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
		log.Printf("Order id %s already taken, retrying", id)
	}
	return "", ErrOrderIDExhausted
}

// afterCommit sends mail and events. Failures here are logged only; the
// ledger is already committed.
func (s *checkoutService) afterCommit(ctx context.Context, rows []model.Transaction, result *CheckoutResult) {
	if result.IsFree {
		msg := purchaseConfirmation(rows, s.opts.WebURL, "Free")
		if err := s.mailer.SendPurchaseConfirmation(ctx, msg); err != nil {
			log.Printf("Checkout %s: purchase confirmation failed: %v", result.OrderID, err)
		}
		publish(ctx, s.publisher, events.OrderPaid, rows, s.now())
		return
	}

	reminder := notify.TransactionReminder{
		To:          rows[0].Email,
		Name:        rows[0].Fullname,
		OrderID:     result.OrderID,
		CourseTitle: courseTitles(rows),
		Total:       model.OrderTotal(rows),
		URL:         s.opts.WebURL + "/login",
	}
	if err := s.mailer.SendTransactionReminder(ctx, reminder); err != nil {
		log.Printf("Checkout %s: reminder failed: %v", result.OrderID, err)
	}
	publish(ctx, s.publisher, events.OrderCreated, rows, s.now())
}

func cartCourseIDs(lines []CartLine) ([]uint, error) {
	seen := make(map[uint]bool, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if seen[l.CourseID] {
			return nil, validationReason("Course ID %d appears more than once in the cart", l.CourseID)
		}
		seen[l.CourseID] = true
		ids = append(ids, l.CourseID)
	}
	return ids, nil
}

func sortedIDs(ids []uint) []uint {
	out := append([]uint(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func courseTitles(rows []model.Transaction) string {
	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Course != nil {
			titles = append(titles, r.Course.Title)
		}
	}
	if len(titles) == 0 {
		return "Unknown Course"
	}
	return strings.Join(titles, ", ")
}
