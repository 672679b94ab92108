package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry full names.
	EnvPrefix = "wl"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WL_DB_DSN"
	EnvDBHost = "WL_DB_HOST"
	EnvDBUser = "WL_DB_USER"
	EnvDBName = "WL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
