package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// IXASALES_ tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "IXASALES_APP_ENV"
	EnvDBDSN  = "IXASALES_DB_DSN"
	EnvDBHost = "IXASALES_DB_HOST"
	EnvDBUser = "IXASALES_DB_USER"
	EnvDBName = "IXASALES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
