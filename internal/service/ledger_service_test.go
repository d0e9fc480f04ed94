package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"course-commerce/internal/model"
	"course-commerce/internal/repository"
	"course-commerce/internal/ws"

	"github.com/shopspring/decimal"
)

func TestLedgerListPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repository.NewTransactionRepo(db), repository.NewCourseRepo(db), nil)
	c := seedCourse(t, db, "Go Dasar", 50000, 100)
	for i := 0; i < 12; i++ {
		status := model.StatusPending
		if i%3 == 0 {
			status = model.StatusPaid
		}
		seedOrder(t, db, fmt.Sprintf("JP-251019-%08d", i), status, c)
	}

	page, err := svc.List(&ListTransactionsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 12 || page.Limit != 10 || page.Page != 1 || page.LastPage != 2 || len(page.Data) != 10 {
		t.Errorf("page = total %d limit %d page %d last %d len %d", page.Total, page.Limit, page.Page, page.LastPage, len(page.Data))
	}

	page, err = svc.List(&ListTransactionsRequest{Status: "paid", Limit: 2, Page: 2})
	if err != nil {
		t.Fatalf("list paid: %v", err)
	}
	if page.Total != 4 || len(page.Data) != 2 || page.LastPage != 2 {
		t.Errorf("paid page = total %d len %d last %d", page.Total, len(page.Data), page.LastPage)
	}

	if _, err := svc.List(&ListTransactionsRequest{Limit: 500}); !errors.Is(err, ErrValidation) {
		t.Errorf("limit 500 err = %v", err)
	}
	if _, err := svc.List(&ListTransactionsRequest{Status: "refunded"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad status err = %v", err)
	}
}

func TestLedgerManualTransaction(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewLedgerService(db, repository.NewTransactionRepo(db), repository.NewCourseRepo(db), pub)
	c := seedCourse(t, db, "Go Dasar", 50000, 100)

	req := &ManualTransactionRequest{
		OrderID:  "MANUAL-001",
		CourseID: c.ID,
		Email:    "siti@example.com",
		Total:    dec(50000),
		Status:   "paid",
	}
	row, err := svc.CreateManual(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.Type != model.TxManual || row.Status != model.StatusPaid || row.ID == 0 {
		t.Errorf("row = %+v", row)
	}
	if len(pub.types()) != 1 {
		t.Errorf("events = %v", pub.types())
	}

	if _, err := svc.CreateManual(context.Background(), req); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate order_id err = %v", err)
	}
	req.OrderID = "MANUAL-002"
	req.CourseID = 999
	if _, err := svc.CreateManual(context.Background(), req); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown course err = %v", err)
	}
}

func TestLedgerUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewLedgerService(db, repository.NewTransactionRepo(db), repository.NewCourseRepo(db), pub)
	c := seedCourse(t, db, "Go Dasar", 50000, 100)
	seedOrder(t, db, "JP-1", model.StatusPending, c)

	var row model.Transaction
	db.Where("order_id = ?", "JP-1").First(&row)

	status := "failed"
	notes := "refund by bank transfer"
	updated, err := svc.Update(context.Background(), row.ID, &UpdateTransactionRequest{Status: &status, Notes: &notes, Total: dec(45000)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusFailed || !updated.Total.Equal(decimal.NewFromInt(45000)) || *updated.Notes != notes {
		t.Errorf("updated = %+v", updated)
	}
	if len(pub.types()) != 1 {
		t.Errorf("events = %v", pub.types())
	}

	var courses int64
	db.Model(&model.Course{}).Count(&courses)
	if courses != 1 {
		t.Errorf("update wrote courses: %d", courses)
	}

	if _, err := svc.Update(context.Background(), 999, &UpdateTransactionRequest{}); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("missing update err = %v", err)
	}
	if err := svc.Delete(row.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(row.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestLedgerHistoryIsScopedToEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db, repository.NewTransactionRepo(db), repository.NewCourseRepo(db), nil)
	c := seedCourse(t, db, "Go Dasar", 50000, 100)
	seedOrder(t, db, "JP-MINE", model.StatusPaid, c)
	other := model.Transaction{OrderID: "JP-OTHER", CourseID: c.ID, Email: "other@example.com",
		Total: decimal.NewFromInt(50000), Status: model.StatusPaid, Type: model.TxMidtrans}
	db.Create(&other)

	rows, err := svc.History("budi@example.com")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(rows) != 1 || rows[0].OrderID != "JP-MINE" || rows[0].Course == nil || rows[0].Course.Title != "Go Dasar" {
		t.Errorf("history = %+v", rows)
	}
	if _, err := svc.HistoryItem(other.ID, "budi@example.com"); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("foreign row err = %v", err)
	}
}

func TestCatalogCourseLifecycle(t *testing.T) {
	db := newTestDB(t)
	hub := ws.NewHub()
	svc := NewCatalogService(repository.NewCourseRepo(db), db, hub)
	actor := Actor{ID: "u-1", Name: "Admin", Email: "admin@example.com"}

	course := &model.Course{Title: "Go Dasar", Type: model.CourseTypeCourse, Price: decimal.NewFromInt(100000), MaxStudent: 20}
	if err := svc.CreateCourse(course, actor); err != nil {
		t.Fatalf("create: %v", err)
	}
	if course.ID == 0 || course.Status != model.CourseDraft || course.CreatedBy != "u-1" {
		t.Errorf("course = %+v", course)
	}
	select {
	case <-hub.Broadcast:
	default:
		t.Error("no catalog broadcast")
	}

	published, _ := svc.GetCourses(true)
	if len(published) != 0 {
		t.Errorf("draft listed as published")
	}

	nominal := model.DiscountNominal
	course.Status = model.CoursePublished
	course.DiscountType = &nominal
	course.Discount = dec(150000)
	updated, err := svc.UpdateCourse(course.ID, course, actor)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.EffectivePrice().IsZero() {
		t.Errorf("effective price = %s, want 0", updated.EffectivePrice())
	}

	half := &model.Course{Title: "X", Type: model.CourseTypeCourse, Price: decimal.NewFromInt(1), DiscountType: &nominal, MaxStudent: 5}
	if err := svc.CreateCourse(half, actor); !errors.Is(err, ErrValidation) {
		t.Errorf("half discount err = %v", err)
	}

	seatless := &model.Course{Title: "Y", Type: model.CourseTypeCourse, Price: decimal.NewFromInt(1)}
	if err := svc.CreateCourse(seatless, actor); !errors.Is(err, ErrValidation) {
		t.Errorf("zero max_student create err = %v", err)
	}
	closed := *course
	closed.MaxStudent = 0
	if _, err := svc.UpdateCourse(course.ID, &closed, actor); !errors.Is(err, ErrValidation) {
		t.Errorf("zero max_student update err = %v", err)
	}

	if _, err := svc.UpdateCourse(999, course, actor); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("missing course err = %v", err)
	}
	if err := svc.DeleteCourse(course.ID, actor); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetCourse(course.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("deleted course err = %v", err)
	}
}
