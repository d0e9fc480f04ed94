package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"course-commerce/internal/app"
	"course-commerce/internal/config"
	"course-commerce/internal/handler"
	"course-commerce/internal/middleware"
	"course-commerce/internal/model"
	"course-commerce/internal/worker"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 2. Database, seed data and services
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Close()

	// 3. WebSocket hub and background sweeper
	go a.Hub.Run()
	go worker.NewSweeper(a.Sweep, cfg.Sweep.Interval, cfg.Sweep.MaxAge).Run(ctx)

	// 4. Handlers
	txHandler := handler.NewTransactionHandler(a.Checkout, a.Reconcile)
	adminTxHandler := handler.NewAdminTransactionHandler(a.Ledger)
	userTxHandler := handler.NewUserTransactionHandler(a.Ledger)
	courseHandler := handler.NewCourseHandler(a.Catalog)
	authHandler := handler.NewAuthHandler(a.Auth)
	accessHandler := handler.NewAccessHandler(a.RoleRepo, a.PrivilegeRepo)

	// 5. Fiber
	server := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	server.Use(logger.New())
	server.Use(recover.New())
	server.Use(cors.New())

	// 6. Routes
	api := server.Group("/api/v1")
	requireAuth := middleware.RequireAuth(a.Issuer, a.UserRepo)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// Storefront and gateway callbacks
	api.Get("/courses", courseHandler.GetCourses)
	api.Get("/courses/:id", courseHandler.GetCourse)
	api.Post("/payment_url", txHandler.CreatePayment)
	api.Post("/notification", txHandler.Notification)
	api.Post("/transactions/check-status", txHandler.CheckStatus)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Post("/transactions/update-status", middleware.RequirePrivilege(model.PrivTransactionUpdate), txHandler.UpdateStatus)

	// Purchaser history
	user := protected.Group("/user")
	user.Get("/transactions", middleware.RequirePrivilege(model.PrivTransactionOwn), userTxHandler.Index)
	user.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionOwn), userTxHandler.Show)

	// Admin ledger
	admin := protected.Group("/admin")
	admin.Get("/transactions", middleware.RequirePrivilege(model.PrivTransactionView), adminTxHandler.Index)
	admin.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionView), adminTxHandler.Show)
	admin.Post("/transactions", middleware.RequirePrivilege(model.PrivTransactionCreate), adminTxHandler.Store)
	admin.Put("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionUpdate), adminTxHandler.Update)
	admin.Delete("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionDelete), adminTxHandler.Destroy)

	// Admin catalog
	admin.Get("/courses", middleware.RequireAnyPrivilege(model.PrivCourseCreate, model.PrivCourseUpdate), courseHandler.GetAllCourses)
	admin.Post("/courses", middleware.RequirePrivilege(model.PrivCourseCreate), courseHandler.CreateCourse)
	admin.Put("/courses/:id", middleware.RequirePrivilege(model.PrivCourseUpdate), courseHandler.UpdateCourse)
	admin.Delete("/courses/:id", middleware.RequirePrivilege(model.PrivCourseDelete), courseHandler.DeleteCourse)

	protected.Get("/roles", accessHandler.GetRoles)
	protected.Get("/privileges", accessHandler.GetPrivileges)

	// WebSocket Route
	server.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	server.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !a.Hub.Join(c) {
			return
		}
		defer a.Hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()
	if err := server.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	a.Hub.Stop()

	log.Println("Server exited")
}
