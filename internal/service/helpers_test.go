package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"course-commerce/internal/events"
	"course-commerce/internal/gateway"
	"course-commerce/internal/model"
	"course-commerce/internal/notify"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
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

func seedCourse(t *testing.T, db *gorm.DB, title string, price int64, maxStudent int) *model.Course {
	t.Helper()
	c := &model.Course{
		Title:      title,
		Type:       model.CourseTypeCourse,
		MaxStudent: maxStudent,
		Price:      decimal.NewFromInt(price),
		Status:     model.CoursePublished,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.Transaction{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

type fakeGateway struct {
	mu        sync.Mutex
	charges   []gateway.ChargeRequest
	chargeErr error
	status    *gateway.StatusResponse
	statusErr error
}

func (g *fakeGateway) CreateCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges = append(g.charges, req)
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return &gateway.ChargeResponse{
		Token:       "snap-token-" + req.TransactionDetails.OrderID,
		RedirectURL: "https://pay.example/" + req.TransactionDetails.OrderID,
	}, nil
}

func (g *fakeGateway) GetStatus(_ context.Context, orderID string) (*gateway.StatusResponse, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	st := *g.status
	st.OrderID = orderID
	return &st, nil
}

type fakeMailer struct {
	mu            sync.Mutex
	confirmations []notify.PurchaseConfirmation
	reminders     []notify.TransactionReminder
}

func (m *fakeMailer) SendPurchaseConfirmation(_ context.Context, msg notify.PurchaseConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, msg)
	return nil
}

func (m *fakeMailer) SendTransactionReminder(_ context.Context, msg notify.TransactionReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, msg)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
