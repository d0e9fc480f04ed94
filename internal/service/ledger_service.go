package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"course-commerce/internal/events"
	"course-commerce/internal/model"
	"course-commerce/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type ListTransactionsRequest struct {
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Status string `query:"status" validate:"omitempty,oneof=pending paid failed"`
	Search string `query:"search"`
}

type TransactionPage struct {
	Data     []model.Transaction `json:"data"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
	LastPage int                 `json:"last_page"`
}

// ManualTransactionRequest records a sale settled outside the gateway.
type ManualTransactionRequest struct {
	OrderID     string           `json:"order_id" validate:"required,max=64"`
	CourseID    uint             `json:"course_id" validate:"required,gt=0"`
	Email       string           `json:"email" validate:"required,email"`
	Fullname    string           `json:"fullname"`
	PhoneNumber string           `json:"phone_number" validate:"omitempty,max=16"`
	Total       *decimal.Decimal `json:"total" validate:"required,gte=0"`
	Status      string           `json:"status" validate:"required,oneof=pending paid failed"`
	Notes       *string          `json:"notes"`
}

// UpdateTransactionRequest is a partial correction; nil fields are kept.
type UpdateTransactionRequest struct {
	CourseID *uint            `json:"course_id" validate:"omitempty,gt=0"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	Total    *decimal.Decimal `json:"total" validate:"omitempty,gte=0"`
	Status   *string          `json:"status" validate:"omitempty,oneof=pending paid failed"`
	Notes    *string          `json:"notes"`
}

type LedgerService interface {
	List(req *ListTransactionsRequest) (*TransactionPage, error)
	Get(id uint) (*model.Transaction, error)
	CreateManual(ctx context.Context, req *ManualTransactionRequest) (*model.Transaction, error)
	Update(ctx context.Context, id uint, req *UpdateTransactionRequest) (*model.Transaction, error)
	Delete(id uint) error
	History(email string) ([]model.Transaction, error)
	HistoryItem(id uint, email string) (*model.Transaction, error)
}

type ledgerService struct {
	db         *gorm.DB
	txRepo     repository.TransactionRepository
	courseRepo repository.CourseRepository
	publisher  events.Publisher
}

func NewLedgerService(db *gorm.DB, txRepo repository.TransactionRepository, courseRepo repository.CourseRepository, publisher events.Publisher) LedgerService {
	return &ledgerService{db: db, txRepo: txRepo, courseRepo: courseRepo, publisher: publisher}
}

func (s *ledgerService) List(req *ListTransactionsRequest) (*TransactionPage, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	rows, total, err := s.txRepo.FindAll(repository.TransactionFilter{
		Status: req.Status,
		Search: strings.TrimSpace(req.Search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	lastPage := int((total + int64(limit) - 1) / int64(limit))
	if lastPage < 1 {
		lastPage = 1
	}
	return &TransactionPage{Data: rows, Total: total, Page: page, Limit: limit, LastPage: lastPage}, nil
}

func (s *ledgerService) Get(id uint) (*model.Transaction, error) {
	row, err := s.txRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	return row, err
}

func (s *ledgerService) CreateManual(ctx context.Context, req *ManualTransactionRequest) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindByID(req.CourseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, validationReason("Course ID %d does not exist", req.CourseID)
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.txRepo.ExistsOrderID(s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ValidationError{Reason: fmt.Sprintf("%s: %s", ErrDuplicateOrderID, req.OrderID)}
	}

	paymentType := string(model.TxManual)
	row := &model.Transaction{
		OrderID:     req.OrderID,
		CourseID:    course.ID,
		Email:       req.Email,
		Fullname:    req.Fullname,
		PhoneNumber: req.PhoneNumber,
		Total:       *req.Total,
		Status:      model.TransactionStatus(req.Status),
		Type:        model.TxManual,
		PaymentType: &paymentType,
		Notes:       req.Notes,
	}
	if err := s.txRepo.Create(row); err != nil {
		return nil, err
	}
	row.Course = course

	log.Printf("Manual transaction %s recorded for %s (%s)", row.OrderID, row.Email, row.Status)
	publish(ctx, s.publisher, events.OrderCreated, []model.Transaction{*row}, time.Now())
	return row, nil
}

// Update is an operator correction and is not bound by the status machine.
func (s *ledgerService) Update(ctx context.Context, id uint, req *UpdateTransactionRequest) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	row, err := s.txRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	previous := row.Status

	if req.CourseID != nil && *req.CourseID != row.CourseID {
		course, err := s.courseRepo.FindByID(*req.CourseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationReason("Course ID %d does not exist", *req.CourseID)
		}
		if err != nil {
			return nil, err
		}
		row.CourseID = course.ID
		row.Course = course
	}
	if req.Email != nil {
		row.Email = *req.Email
	}
	if req.Total != nil {
		row.Total = *req.Total
	}
	if req.Status != nil {
		row.Status = model.TransactionStatus(*req.Status)
	}
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	if err := s.txRepo.Update(row); err != nil {
		return nil, err
	}

	if row.Status != previous {
		log.Printf("Transaction %d (%s) corrected by operator: %s -> %s", row.ID, row.OrderID, previous, row.Status)
		publish(ctx, s.publisher, eventTypeFor(row.Status), []model.Transaction{*row}, time.Now())
	}
	return row, nil
}

func (s *ledgerService) Delete(id uint) error {
	err := s.txRepo.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTransactionNotFound
	}
	return err
}

func (s *ledgerService) History(email string) ([]model.Transaction, error) {
	return s.txRepo.FindByEmail(email)
}

func (s *ledgerService) HistoryItem(id uint, email string) (*model.Transaction, error) {
	row, err := s.txRepo.FindByIDAndEmail(id, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	return row, err
}
