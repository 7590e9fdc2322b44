package config

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "MART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MART_DB_DSN"
	EnvDBHost = "MART_DB_HOST"
	EnvDBUser = "MART_DB_USER"
	EnvDBName = "MART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
