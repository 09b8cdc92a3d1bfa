package main

import (
	"context"
	"fmt"
	"log"

	common_api "bank-backoffice/internal/common/api"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/database"
	"bank-backoffice/internal/features/account"
	"bank-backoffice/internal/features/approval"
	"bank-backoffice/internal/features/audit"
	"bank-backoffice/internal/features/auth"
	"bank-backoffice/internal/features/transaction"
	"bank-backoffice/internal/features/user"
	"bank-backoffice/internal/logger"
	"bank-backoffice/internal/middleware"
	"bank-backoffice/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created.
// The approvals index backs the one-pending-approval-per-transaction
// invariant, so failures there are fatal.
func InitializeIndexes(lc fx.Lifecycle, userRepo user.UserRepository, approvalRepo approval.ApprovalRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := userRepo.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure user indexes: %w", err)
			}
			if err := approvalRepo.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure approval indexes: %w", err)
			}
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			audit.NewAuditRepository,
			user.NewUserRepository,
			account.NewAccountRepository,
			transaction.NewTransactionRepository,
			approval.NewApprovalRepository,

			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			user.NewFirstEligibleReviewer,
			account.NewAccountService,
			transaction.NewTransactionService,
			approval.NewApprovalService,
			approval.NewPendingSweeper,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(db *database.MongodbDB) database.AtomicRunner { return db },
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) approval.UserDirectory { return r },
			func(r account.AccountRepository) transaction.AccountGateway { return r },
			func(r approval.ApprovalRepository) transaction.ApprovalGateway { return r },
			func(p *user.FirstEligibleReviewer) transaction.ReviewerPolicy { return p },
			func(s transaction.TransactionService) approval.TransactionGateway { return s },

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			account.NewAccountController,
			transaction.NewTransactionController,
			approval.NewApprovalController,
			audit.NewAuditController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(account.NewAccountApi),
			AsRoute(transaction.NewTransactionApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(audit.NewAuditApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, sweeper *approval.PendingSweeper) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return sweeper.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return sweeper.StopScheduler()
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
