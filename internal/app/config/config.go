package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr        string
	InternalToken   string
	CORSAllowOrigin string
	LogLevel        string

	StoreDriver   string
	DatabaseURL   string
	SQLitePath    string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnIdle time.Duration

	CounterBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	OfficeEmail  string

	PublicBaseURL       string
	TokenTTL            time.Duration
	InvoicePaymentDays  int
	PDFFontDir          string
	Timezone            string
	MaintenanceSchedule string

	Company Company
}

// Company is the letterhead printed on every document and used as the
// sender identity in customer emails.
type Company struct {
	Name     string
	Street   string
	City     string
	Phone    string
	Email    string
	Web      string
	Bank     string
	IBAN     string
	BIC      string
	TaxID    string
	Director string
}

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	CounterStore = "store"
	CounterRedis = "redis"
)

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("SQLITE_PATH", "umzugsbuero.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_CONN_IDLE", "5m")
	v.SetDefault("COUNTER_BACKEND", CounterStore)
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("TOKEN_TTL", "336h")
	v.SetDefault("INVOICE_PAYMENT_DAYS", 14)
	v.SetDefault("TIMEZONE", "Europe/Berlin")
	v.SetDefault("MAINTENANCE_SCHEDULE", "@hourly")
	v.SetDefault("COMPANY_NAME", "Umzugsbüro")

	maxIdle, err := time.ParseDuration(v.GetString("DB_MAX_CONN_IDLE"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing DB_MAX_CONN_IDLE: %w", err)
	}
	tokenTTL, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing TOKEN_TTL: %w", err)
	}

	cfg := Config{
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		InternalToken:   v.GetString("INTERNAL_TOKEN"),
		CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		LogLevel:        v.GetString("LOG_LEVEL"),

		StoreDriver:   strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		SQLitePath:    v.GetString("SQLITE_PATH"),
		DBMaxConns:    v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:    v.GetInt32("DB_MIN_CONNS"),
		DBMaxConnIdle: maxIdle,

		CounterBackend: strings.ToLower(v.GetString("COUNTER_BACKEND")),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		MailFrom:     v.GetString("MAIL_FROM"),
		OfficeEmail:  v.GetString("OFFICE_EMAIL"),

		PublicBaseURL:       strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		TokenTTL:            tokenTTL,
		InvoicePaymentDays:  v.GetInt("INVOICE_PAYMENT_DAYS"),
		PDFFontDir:          v.GetString("PDF_FONT_DIR"),
		Timezone:            v.GetString("TIMEZONE"),
		MaintenanceSchedule: v.GetString("MAINTENANCE_SCHEDULE"),

		Company: Company{
			Name:     v.GetString("COMPANY_NAME"),
			Street:   v.GetString("COMPANY_STREET"),
			City:     v.GetString("COMPANY_CITY"),
			Phone:    v.GetString("COMPANY_PHONE"),
			Email:    v.GetString("COMPANY_EMAIL"),
			Web:      v.GetString("COMPANY_WEB"),
			Bank:     v.GetString("COMPANY_BANK"),
			IBAN:     v.GetString("COMPANY_IBAN"),
			BIC:      v.GetString("COMPANY_BIC"),
			TaxID:    v.GetString("COMPANY_TAX_ID"),
			Director: v.GetString("COMPANY_DIRECTOR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	if c.InternalToken == "" {
		missing = append(missing, "INTERNAL_TOKEN")
	}
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.CounterBackend {
	case CounterStore, CounterRedis:
	default:
		return fmt.Errorf("unsupported COUNTER_BACKEND %q", c.CounterBackend)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing env %s", strings.Join(missing, ", "))
	}
	return nil
}

// Location resolves TIMEZONE, falling back to UTC when the zone database
// does not know it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MailEnabled reports whether outgoing email is configured at all.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}
