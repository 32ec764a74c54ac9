package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "ZULAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "ZULAL_APP_ENV"
	EnvPort       = "ZULAL_APP_PORT"
	EnvDBDSN      = "ZULAL_DB_DSN"
	EnvDBHost     = "ZULAL_DB_HOST"
	EnvDBUser     = "ZULAL_DB_USER"
	EnvDBName     = "ZULAL_DB_NAME"
	EnvRedisURL   = "ZULAL_REDIS_URL"
	EnvJWTSecret  = "ZULAL_JWT_SECRET"
	EnvJWTIssuer  = "ZULAL_JWT_ISSUER"
	EnvJWTExpMins = "ZULAL_JWT_EXPIRATION_MINUTES"
	EnvAdminEmail = "ZULAL_ADMIN_EMAIL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
