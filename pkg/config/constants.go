package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "voltline"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "VOLTLINE_APP_ENV"
	EnvPort                   = "VOLTLINE_APP_PORT"
	EnvDBDSN                  = "VOLTLINE_DB_DSN"
	EnvDBHost                 = "VOLTLINE_DB_HOST"
	EnvDBUser                 = "VOLTLINE_DB_USER"
	EnvDBName                 = "VOLTLINE_DB_NAME"
	EnvRedisURL               = "VOLTLINE_REDIS_URL"
	EnvJWTSecret              = "VOLTLINE_JWT_SECRET"
	EnvJWTIssuer              = "VOLTLINE_JWT_ISSUER"
	EnvJWTExpMins             = "VOLTLINE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "VOLTLINE_REFRESH_TOKEN_TTL_MINUTES"
	EnvNotifyBaseURL          = "VOLTLINE_NOTIFY_BASE_URL"
	EnvNotifyToken            = "VOLTLINE_NOTIFY_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
