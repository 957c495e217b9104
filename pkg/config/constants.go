package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit names.
const EnvPrefix = "GARAGEPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "GARAGEPOS_APP_ENV"
	EnvPort      = "GARAGEPOS_APP_PORT"
	EnvRedisURL  = "GARAGEPOS_REDIS_URL"
	EnvJWTSecret = "GARAGEPOS_JWT_SECRET"

	EnvDBDSN  = "GARAGEPOS_DB_DSN"
	EnvDBHost = "GARAGEPOS_DB_HOST"
	EnvDBUser = "GARAGEPOS_DB_USER"
	EnvDBName = "GARAGEPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
