package main

import (
	"context"
	"time"

	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/database"
	"bank-backoffice/internal/features/user"
	"bank-backoffice/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seed creates the bootstrap back-office users if they do not exist
// yet: one Admin, one Manager, one Officer.
func Seed(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := userRepo.EnsureIndexes(seedCtx); err != nil {
					logger.Error("Failed to ensure user indexes", zap.Error(err))
					return
				}

				seedUsers := []struct {
					name, email, role, password string
				}{
					{"System Admin", "admin@bank.local", models.RoleAdmin, "admin123"},
					{"Branch Manager", "manager@bank.local", models.RoleManager, "manager123"},
					{"Branch Officer", "officer@bank.local", models.RoleOfficer, "officer123"},
				}

				for _, su := range seedUsers {
					existing, err := userRepo.FindByEmail(seedCtx, su.email)
					if err != nil {
						logger.Error("Seed lookup failed", zap.String("email", su.email), zap.Error(err))
						continue
					}
					if existing != nil {
						logger.Info("User already exists, skipping", zap.String("email", su.email))
						continue
					}

					hashed, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
					if err != nil {
						logger.Error("Failed to hash password", zap.Error(err))
						continue
					}

					now := time.Now().UTC()
					err = userRepo.Create(seedCtx, &user.User{
						ID:        primitive.NewObjectID(),
						Name:      su.name,
						Email:     su.email,
						Password:  string(hashed),
						Role:      su.role,
						Branch:    "HQ",
						Status:    user.StatusActive,
						CreatedAt: now,
						UpdatedAt: now,
					})
					if err != nil {
						logger.Error("Failed to seed user", zap.String("email", su.email), zap.Error(err))
						continue
					}
					logger.Info("Seeded user", zap.String("email", su.email), zap.String("role", su.role))
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			user.NewUserRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
