package config

type AppConfig struct {
	APIPort       string `env:"PORT" envDefault:"12300"`
	APIKey        string `env:"API_KEY,required"`
	AppSource     string `env:"APP_SOURCE" envDefault:"seoportal"`
	MetricsPrefix string `env:"METRICS_PREFIX" envDefault:"seoportal"`
	RabbitMQURL   string `env:"RABBITMQ_URL"`
}

type DatabaseConfig struct {
	Host            string `env:"PORTAL_POSTGRES_HOST,required"`
	Port            string `env:"PORTAL_POSTGRES_PORT,required"`
	User            string `env:"PORTAL_POSTGRES_USER,required"`
	DBName          string `env:"PORTAL_POSTGRES_DB_NAME,required"`
	Password        string `env:"PORTAL_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"PORTAL_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"PORTAL_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"PORTAL_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"PORTAL_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"PORTAL_POSTGRES_SSL_MODE" envDefault:"require"`
}

// CronAuthConfig selects how the publish sweep endpoint authenticates
// its caller: HTTP Basic credentials or a bearer secret.
type CronAuthConfig struct {
	Scheme       string `env:"CRON_AUTH_SCHEME" envDefault:"basic"`
	Username     string `env:"CRON_AUTH_USERNAME"`
	Password     string `env:"CRON_AUTH_PASSWORD"`
	BearerSecret string `env:"CRON_AUTH_BEARER_SECRET"`
}

type StorageConfig struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	ReportBucket    string `env:"BUCKET_NAME_REPORTS" envDefault:"reports"`
	CDNDomain       string `env:"REPORTS_CDN_DOMAIN"`
}
