package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is shared by every PharmaEye environment variable.
const EnvPrefix = "PHARMAEYE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	Storage   StorageConfig
	DB        DBConfig
	Local     LocalStoreConfig
	REST      RESTStoreConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Bootstrap BootstrapConfig
	Import    ImportConfig
	Gemini    GeminiConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.IsSupabase() && cfg.DB.DSN == "" {
		return nil, fmt.Errorf("PHARMAEYE_DB_DSN is required for the supabase backend")
	}
	if cfg.Storage.IsREST() && cfg.REST.BaseURL == "" {
		return nil, fmt.Errorf("PHARMAEYE_REST_BASE_URL is required for the rest backend")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHARMAEYE_APP_ENV" required:"true"`
	Port         string `envconfig:"PHARMAEYE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PHARMAEYE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMAEYE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Backend names accepted by PHARMAEYE_STORAGE_BACKEND. Exactly one backend is
// active per deployment; there is no runtime fallback between them.
const (
	BackendLocal    = "local"
	BackendREST     = "rest"
	BackendSupabase = "supabase"
)

type StorageConfig struct {
	Backend string `envconfig:"PHARMAEYE_STORAGE_BACKEND" default:"local"`
}

func (s StorageConfig) IsLocal() bool    { return strings.EqualFold(s.Backend, BackendLocal) }
func (s StorageConfig) IsREST() bool     { return strings.EqualFold(s.Backend, BackendREST) }
func (s StorageConfig) IsSupabase() bool { return strings.EqualFold(s.Backend, BackendSupabase) }

func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case BackendLocal, BackendREST, BackendSupabase:
		return nil
	}
	return fmt.Errorf("unknown storage backend %q (expected %s, %s, or %s)",
		s.Backend, BackendLocal, BackendREST, BackendSupabase)
}

type DBConfig struct {
	DSN             string        `envconfig:"PHARMAEYE_DB_DSN"`
	MaxOpenConns    int           `envconfig:"PHARMAEYE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHARMAEYE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHARMAEYE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHARMAEYE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"PHARMAEYE_AUTO_MIGRATE" default:"false"`
}

type LocalStoreConfig struct {
	Path string `envconfig:"PHARMAEYE_LOCAL_DB_PATH" default:"pharmaeye.db"`
}

type RESTStoreConfig struct {
	BaseURL string        `envconfig:"PHARMAEYE_REST_BASE_URL"`
	Timeout time.Duration `envconfig:"PHARMAEYE_REST_TIMEOUT" default:"15s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PHARMAEYE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PHARMAEYE_JWT_ISSUER" default:"pharmaeye"`
	ExpirationMinutes int    `envconfig:"PHARMAEYE_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PHARMAEYE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PHARMAEYE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PHARMAEYE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PHARMAEYE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PHARMAEYE_ARGON_KEY_LEN" default:"32"`
}

// BootstrapConfig controls first-boot seeding of the reserved root account.
type BootstrapConfig struct {
	RootUsername string `envconfig:"PHARMAEYE_ROOT_USERNAME" default:"root"`
	RootEmail    string `envconfig:"PHARMAEYE_ROOT_EMAIL" default:"admin@pharma.com"`
	RootPassword string `envconfig:"PHARMAEYE_ROOT_PASSWORD" default:"root1"`
	RootFullName string `envconfig:"PHARMAEYE_ROOT_FULL_NAME" default:"المدير العام"`
}

type ImportConfig struct {
	MaxUploadMB int `envconfig:"PHARMAEYE_IMPORT_MAX_UPLOAD_MB" default:"50"`
}

type GeminiConfig struct {
	APIKey  string        `envconfig:"PHARMAEYE_GEMINI_API_KEY"`
	Model   string        `envconfig:"PHARMAEYE_GEMINI_MODEL" default:"gemini-2.5-flash"`
	BaseURL string        `envconfig:"PHARMAEYE_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `envconfig:"PHARMAEYE_GEMINI_TIMEOUT" default:"60s"`
}
