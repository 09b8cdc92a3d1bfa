package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string

	// EscalationThreshold is the amount above which a transaction needs
	// manager approval before it can complete. Decimal string, parsed at
	// startup by the transaction service.
	EscalationThreshold string

	// PendingApprovalMaxAgeHours is how old a Pending approval may get
	// before the sweeper reports it.
	PendingApprovalMaxAgeHours string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:                       getEnv("PORT", "8080"),
		JWTSecret:                  getEnv("JWT_SECRET", "secret"),
		MongoURI:                   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:                     getEnv("DB_NAME", "bank-backoffice"),
		SkipAuth:                   getEnv("SKIP_AUTH", "false") == "true",
		Environment:                getEnv("ENVIRONMENT", "development"),
		EscalationThreshold:        getEnv("ESCALATION_THRESHOLD", "100000"),
		PendingApprovalMaxAgeHours: getEnv("PENDING_APPROVAL_MAX_AGE_HOURS", "24"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
