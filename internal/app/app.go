package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"course-commerce/internal/config"
	"course-commerce/internal/events"
	"course-commerce/internal/gateway"
	"course-commerce/internal/idempotency"
	"course-commerce/internal/model"
	"course-commerce/internal/notify"
	"course-commerce/internal/repository"
	"course-commerce/internal/service"
	"course-commerce/internal/ws"
	"course-commerce/pkg/database"
	"course-commerce/pkg/jwt"

	"gorm.io/gorm"
)

// App holds the wired dependencies shared by the API server and the CLI.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *ws.Hub
	Issuer *jwt.Issuer

	CourseRepo    repository.CourseRepository
	TxRepo        repository.TransactionRepository
	EventRepo     repository.GatewayEventRepository
	UserRepo      repository.UserRepository
	RoleRepo      repository.RoleRepository
	PrivilegeRepo repository.PrivilegeRepository

	Checkout  service.CheckoutService
	Reconcile service.ReconcileService
	Sweep     service.SweepService
	Ledger    service.LedgerService
	Catalog   service.CatalogService
	Auth      service.AuthService

	closers []func() error
}

// Models is every table the service owns, in migration order.
var Models = []interface{}{
	&model.Privilege{},
	&model.Role{},
	&model.User{},
	&model.Course{},
	&model.Transaction{},
	&model.GatewayEvent{},
}

// New connects the database, migrates, seeds access control and wires the
// services. Optional backends (Redis, Kafka, SMTP) fall back to in-process
// versions when not configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(database.Options{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBPool.MaxOpenConns,
		MaxIdleConns:    cfg.DBPool.MaxIdleConns,
		ConnMaxLifetime: cfg.DBPool.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(Models...); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{
		Config:        cfg,
		DB:            db,
		Hub:           ws.NewHub(),
		Issuer:        jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		CourseRepo:    repository.NewCourseRepo(db),
		TxRepo:        repository.NewTransactionRepo(db),
		EventRepo:     repository.NewGatewayEventRepo(db),
		UserRepo:      repository.NewUserRepo(db),
		RoleRepo:      repository.NewRoleRepo(db),
		PrivilegeRepo: repository.NewPrivilegeRepo(db),
	}

	if err := service.SeedAccessControl(a.PrivilegeRepo, a.RoleRepo, a.UserRepo, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: failed to seed access control: %v", err)
	}

	gw := gateway.NewMidtransClient(gateway.Config{
		ServerKey: cfg.Midtrans.ServerKey,
		SnapURL:   cfg.Midtrans.SnapURL,
		BaseURL:   cfg.Midtrans.BaseURL,
		Timeout:   cfg.Midtrans.Timeout,
	})
	mailer := a.mailer()
	publisher := a.publisher()
	dedup := a.dedupStore(ctx)

	a.Checkout = service.NewCheckoutService(db, a.CourseRepo, a.TxRepo, gw, mailer, publisher, service.CheckoutOptions{
		WebURL:        cfg.WebURL,
		ReserveWindow: cfg.Sweep.MaxAge,
	})
	a.Reconcile = service.NewReconcileService(db, a.TxRepo, a.EventRepo, gw, dedup, mailer, publisher, service.ReconcileOptions{
		WebURL:          cfg.WebURL,
		ServerKey:       cfg.Midtrans.ServerKey,
		VerifySignature: cfg.Midtrans.VerifySignature,
		DedupTTL:        cfg.Webhook.DedupTTL,
	})
	a.Sweep = service.NewSweepService(db, a.TxRepo, publisher)
	a.Ledger = service.NewLedgerService(db, a.TxRepo, a.CourseRepo, publisher)
	a.Catalog = service.NewCatalogService(a.CourseRepo, db, a.Hub)
	a.Auth = service.NewAuthService(a.UserRepo, a.RoleRepo, a.Issuer, a.Hub)

	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	return a, nil
}

func (a *App) mailer() notify.Mailer {
	smtp := a.Config.SMTP
	if smtp.Host == "" {
		log.Println("SMTP_HOST not set, emails will only be logged")
		return notify.LogMailer{}
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     smtp.Host,
		Port:     smtp.Port,
		Username: smtp.Username,
		Password: smtp.Password,
		From:     smtp.From,
		FromName: smtp.FromName,
		UseSSL:   smtp.UseSSL,
	})
}

func (a *App) publisher() events.Publisher {
	sinks := events.Fanout{events.NewHubPublisher(a.Hub)}
	if len(a.Config.Kafka.Brokers) == 0 {
		return sinks
	}
	kafka, err := events.NewKafkaPublisher(a.Config.Kafka.Brokers, a.Config.Kafka.Topic, 5)
	if err != nil {
		log.Printf("Warning: Kafka unavailable, events go to websocket only: %v", err)
		return sinks
	}
	a.closers = append(a.closers, kafka.Close)
	return append(sinks, kafka)
}

func (a *App) dedupStore(ctx context.Context) idempotency.Store {
	r := a.Config.Redis
	if r.Addr == "" {
		return idempotency.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := idempotency.ConnectRedis(ctx, r.Addr, r.Password, r.DB)
	if err != nil {
		log.Printf("Warning: Redis unavailable, webhook dedup is per process: %v", err)
		return idempotency.NewMemoryStore()
	}
	a.closers = append(a.closers, client.Close)
	return idempotency.NewRedisStore(client, "course-commerce:")
}

// Close releases every backend connection opened by New.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
}
