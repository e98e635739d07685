package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names shared with tests and deployment manifests.
const (
	EnvAppEnv     = "MEALBRIDGE_APP_ENV"
	EnvPort       = "MEALBRIDGE_APP_PORT"
	EnvDBDSN      = "MEALBRIDGE_DB_DSN"
	EnvRedisURL   = "MEALBRIDGE_REDIS_URL"
	EnvJWTSecret  = "MEALBRIDGE_JWT_SECRET"
	EnvJWTIssuer  = "MEALBRIDGE_JWT_ISSUER"
	EnvJWTExpMins = "MEALBRIDGE_JWT_EXPIRATION_MINUTES"
)
