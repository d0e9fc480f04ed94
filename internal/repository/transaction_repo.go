package repository

import (
	"strings"
	"time"

	"course-commerce/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	// Checkout and reconciliation; tx is the caller's database transaction.
	CreateBatch(tx *gorm.DB, rows []model.Transaction) error
	CountOccupied(tx *gorm.DB, courseID uint, reservedSince time.Time) (int64, error)
	ExistsOrderID(tx *gorm.DB, orderID string) (bool, error)
	LockByOrderID(tx *gorm.DB, orderID string) ([]model.Transaction, error)
	UpdateStatusByOrderID(tx *gorm.DB, orderID string, status model.TransactionStatus, paymentType string) (int64, error)
	SetRedirectURL(tx *gorm.DB, orderID, redirectURL string) error
	StaleOrderIDs(tx *gorm.DB, cutoff time.Time) ([]string, error)
	MarkStaleFailed(tx *gorm.DB, cutoff time.Time) (int64, error)

	FindByOrderID(orderID string) ([]model.Transaction, error)
	FindByID(id uint) (*model.Transaction, error)
	FindAll(filter TransactionFilter) ([]model.Transaction, int64, error)
	FindByEmail(email string) ([]model.Transaction, error)
	FindByIDAndEmail(id uint, email string) (*model.Transaction, error)
	Create(row *model.Transaction) error
	Update(row *model.Transaction) error
	Delete(id uint) error
}

// TransactionFilter drives the admin ledger listing.
type TransactionFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) CreateBatch(tx *gorm.DB, rows []model.Transaction) error {
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// CountOccupied counts seats taken on a course: paid rows plus pending rows
// created at or after reservedSince. A zero reservedSince counts paid only.
func (r *transactionRepo) CountOccupied(tx *gorm.DB, courseID uint, reservedSince time.Time) (int64, error) {
	var count int64
	q := tx.Model(&model.Transaction{}).Where("course_id = ?", courseID)
	if reservedSince.IsZero() {
		q = q.Where("status = ?", model.StatusPaid)
	} else {
		q = q.Where("status = ? OR (status = ? AND created_at >= ?)", model.StatusPaid, model.StatusPending, reservedSince)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *transactionRepo) ExistsOrderID(tx *gorm.DB, orderID string) (bool, error) {
	var count int64
	err := tx.Model(&model.Transaction{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *transactionRepo) LockByOrderID(tx *gorm.DB, orderID string) ([]model.Transaction, error) {
	var rows []model.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateStatusByOrderID moves every row of the order in one statement.
func (r *transactionRepo) UpdateStatusByOrderID(tx *gorm.DB, orderID string, status model.TransactionStatus, paymentType string) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if paymentType != "" {
		updates["payment_type"] = paymentType
	}
	res := tx.Model(&model.Transaction{}).Where("order_id = ?", orderID).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *transactionRepo) SetRedirectURL(tx *gorm.DB, orderID, redirectURL string) error {
	return tx.Model(&model.Transaction{}).
		Where("order_id = ?", orderID).
		Update("redirect_url", redirectURL).Error
}

func (r *transactionRepo) StaleOrderIDs(tx *gorm.DB, cutoff time.Time) ([]string, error) {
	var ids []string
	err := tx.Model(&model.Transaction{}).
		Where("status = ? AND created_at < ?", model.StatusPending, cutoff).
		Distinct().
		Pluck("order_id", &ids).Error
	return ids, err
}

func (r *transactionRepo) MarkStaleFailed(tx *gorm.DB, cutoff time.Time) (int64, error) {
	res := tx.Model(&model.Transaction{}).
		Where("status = ? AND created_at < ?", model.StatusPending, cutoff).
		Update("status", model.StatusFailed)
	return res.RowsAffected, res.Error
}

func (r *transactionRepo) FindByOrderID(orderID string) ([]model.Transaction, error) {
	var rows []model.Transaction
	err := r.db.Preload("Course").Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) FindByID(id uint) (*model.Transaction, error) {
	var row model.Transaction
	if err := r.db.Preload("Course").First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.Transaction, int64, error) {
	var (
		rows  []model.Transaction
		total int64
	)

	q := r.db.Model(&model.Transaction{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(order_id) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Course").
		Order("id DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *transactionRepo) FindByEmail(email string) ([]model.Transaction, error) {
	var rows []model.Transaction
	err := r.db.Preload("Course", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "title", "type")
	}).Where("email = ?", email).Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) FindByIDAndEmail(id uint, email string) (*model.Transaction, error) {
	var row model.Transaction
	err := r.db.Preload("Course", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "title", "type")
	}).Where("id = ? AND email = ?", id, email).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *transactionRepo) Create(row *model.Transaction) error {
	return r.db.Omit(clause.Associations).Create(row).Error
}

// Update saves the row only; the preloaded course is never written back.
func (r *transactionRepo) Update(row *model.Transaction) error {
	return r.db.Omit(clause.Associations).Save(row).Error
}

func (r *transactionRepo) Delete(id uint) error {
	res := r.db.Delete(&model.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
