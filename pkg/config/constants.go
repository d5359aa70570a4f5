package config

// EnvPrefix is handed to envconfig; individual fields carry fully qualified names.
const EnvPrefix = "adledger"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "ADLEDGER_APP_ENV"
	EnvAppPort = "ADLEDGER_APP_PORT"

	EnvDBDSN  = "ADLEDGER_DB_DSN"
	EnvDBHost = "ADLEDGER_DB_HOST"
	EnvDBUser = "ADLEDGER_DB_USER"
	EnvDBName = "ADLEDGER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
