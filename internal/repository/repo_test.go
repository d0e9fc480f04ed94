package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"course-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.Course{}, &model.Transaction{}, &model.GatewayEvent{},
		&model.Privilege{}, &model.Role{}, &model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRow(t *testing.T, db *gorm.DB, orderID string, courseID uint, status model.TransactionStatus, createdAt time.Time) model.Transaction {
	t.Helper()
	row := model.Transaction{
		OrderID:  orderID,
		CourseID: courseID,
		Email:    "buyer@example.com",
		Total:    decimal.NewFromInt(50000),
		Status:   status,
		Type:     model.TxMidtrans,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create row: %v", err)
	}
	if !createdAt.IsZero() {
		if err := db.Model(&row).UpdateColumn("created_at", createdAt).Error; err != nil {
			t.Fatalf("backdate row: %v", err)
		}
	}
	return row
}

func TestCountOccupied(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepo(db)
	now := time.Now().UTC()

	seedRow(t, db, "JP-1", 1, model.StatusPaid, time.Time{})
	seedRow(t, db, "JP-2", 1, model.StatusPending, now.Add(-time.Hour))
	seedRow(t, db, "JP-3", 1, model.StatusPending, now.Add(-13*time.Hour))
	seedRow(t, db, "JP-4", 1, model.StatusFailed, time.Time{})
	seedRow(t, db, "JP-5", 2, model.StatusPaid, time.Time{})

	paidOnly, err := repo.CountOccupied(db, 1, time.Time{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if paidOnly != 1 {
		t.Errorf("paid only = %d, want 1", paidOnly)
	}

	withReservations, err := repo.CountOccupied(db, 1, now.Add(-12*time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if withReservations != 2 {
		t.Errorf("paid + fresh pending = %d, want 2", withReservations)
	}
}

func TestStaleSweepQueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepo(db)
	now := time.Now().UTC()
	cutoff := now.Add(-12 * time.Hour)

	seedRow(t, db, "JP-OLD", 1, model.StatusPending, now.Add(-13*time.Hour))
	seedRow(t, db, "JP-OLD", 2, model.StatusPending, now.Add(-13*time.Hour))
	seedRow(t, db, "JP-NEW", 1, model.StatusPending, now.Add(-11*time.Hour))
	seedRow(t, db, "JP-PAID", 1, model.StatusPaid, now.Add(-20*time.Hour))

	ids, err := repo.StaleOrderIDs(db, cutoff)
	if err != nil {
		t.Fatalf("stale ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "JP-OLD" {
		t.Errorf("stale ids = %v", ids)
	}

	n, err := repo.MarkStaleFailed(db, cutoff)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d, want 2", n)
	}

	rows, _ := repo.FindByOrderID("JP-NEW")
	if rows[0].Status != model.StatusPending {
		t.Errorf("11h old row changed to %s", rows[0].Status)
	}
	rows, _ = repo.FindByOrderID("JP-PAID")
	if rows[0].Status != model.StatusPaid {
		t.Errorf("paid row changed to %s", rows[0].Status)
	}
}

func TestFindAllFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepo(db)

	for i := 1; i <= 15; i++ {
		status := model.StatusPending
		if i%3 == 0 {
			status = model.StatusPaid
		}
		seedRow(t, db, fmt.Sprintf("JP-251019-%04d", i), 1, status, time.Time{})
	}

	rows, total, err := repo.FindAll(TransactionFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if total != 15 || len(rows) != 10 {
		t.Errorf("total=%d len=%d", total, len(rows))
	}
	if rows[0].ID < rows[1].ID {
		t.Errorf("expected newest first")
	}

	rows, total, _ = repo.FindAll(TransactionFilter{Page: 2, Limit: 10})
	if total != 15 || len(rows) != 5 {
		t.Errorf("page 2: total=%d len=%d", total, len(rows))
	}

	rows, total, _ = repo.FindAll(TransactionFilter{Status: "paid", Page: 1, Limit: 10})
	if total != 5 || len(rows) != 5 {
		t.Errorf("status filter: total=%d len=%d", total, len(rows))
	}

	rows, total, _ = repo.FindAll(TransactionFilter{Search: "jp-251019-001", Page: 1, Limit: 10})
	if total != 6 {
		t.Errorf("search: total=%d (rows %d)", total, len(rows))
	}
}

func TestUpdateStatusByOrderIDMovesAllRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepo(db)
	seedRow(t, db, "JP-X", 1, model.StatusPending, time.Time{})
	seedRow(t, db, "JP-X", 2, model.StatusPending, time.Time{})
	seedRow(t, db, "JP-Y", 1, model.StatusPending, time.Time{})

	n, err := repo.UpdateStatusByOrderID(db, "JP-X", model.StatusPaid, "bank_transfer")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d", n)
	}
	rows, _ := repo.FindByOrderID("JP-X")
	for _, r := range rows {
		if r.Status != model.StatusPaid || r.PaymentType == nil || *r.PaymentType != "bank_transfer" {
			t.Errorf("row %d not updated: %+v", r.ID, r)
		}
	}
	other, _ := repo.FindByOrderID("JP-Y")
	if other[0].Status != model.StatusPending {
		t.Errorf("unrelated order touched")
	}
}

func TestUniqueOrderCourse(t *testing.T) {
	db := newTestDB(t)
	seedRow(t, db, "JP-DUP", 1, model.StatusPending, time.Time{})

	dup := model.Transaction{OrderID: "JP-DUP", CourseID: 1, Email: "x@example.com", Total: decimal.Zero}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique violation for same order and course")
	}
}

func TestGrantDefaults(t *testing.T) {
	db := newTestDB(t)
	privRepo := NewPrivilegeRepo(db)
	roleRepo := NewRoleRepo(db)

	if err := privRepo.SeedDefaults(); err != nil {
		t.Fatalf("seed privileges: %v", err)
	}
	if err := privRepo.SeedDefaults(); err != nil {
		t.Fatalf("seed privileges twice: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	all, _ := privRepo.FindAll()
	if len(all) != len(model.DefaultPrivileges) {
		t.Fatalf("privileges = %d", len(all))
	}
	if err := roleRepo.GrantDefaults(all); err != nil {
		t.Fatalf("grant: %v", err)
	}

	student, err := roleRepo.FindByCode(model.RoleStudent)
	if err != nil {
		t.Fatalf("student role: %v", err)
	}
	if len(student.Privileges) != 1 || student.Privileges[0].Code != model.PrivTransactionOwn {
		t.Errorf("student privileges = %+v", student.Privileges)
	}
	admin, _ := roleRepo.FindByCode(model.RoleAdmin)
	for _, p := range admin.Privileges {
		if p.Code == model.PrivTransactionDelete {
			t.Errorf("admin should not delete transactions")
		}
	}
}

func TestUserSessionUpdates(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)

	u := &model.User{Email: "ana@example.com", Password: "x", FullName: "Ana", IsActive: true}
	if err := users.Create(u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if taken, err := users.EmailExists("ana@example.com"); err != nil || !taken {
		t.Fatalf("EmailExists = %v, %v", taken, err)
	}

	if err := users.StartSession(u.ID, "v1"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := users.ChangePassword(u.ID, "hash", "v2"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	got, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Password != "hash" || got.TokenVersion != "v2" || got.LastSeenAt == nil {
		t.Errorf("user = %+v", got)
	}

	if err := users.TouchLastSeen(uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("touch unknown user err = %v", err)
	}
}
