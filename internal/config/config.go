package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/adsync-api/internal/domain"
)

type Config struct {
	App        App        `mapstructure:",squash"`
	Server     Server     `mapstructure:",squash"`
	Database   Database   `mapstructure:",squash"`
	Redis      Redis      `mapstructure:",squash"`
	Encryption Encryption `mapstructure:",squash"`
	Auth       Auth       `mapstructure:",squash"`
	OAuth      OAuth      `mapstructure:",squash"`
	Meta       Meta       `mapstructure:",squash"`
	Google     Google     `mapstructure:",squash"`
	TikTok     TikTok     `mapstructure:",squash"`
	Naver      Naver      `mapstructure:",squash"`
	RateLimit  RateLimit  `mapstructure:",squash"`
	Sync       Sync       `mapstructure:",squash"`
	Scheduler  Scheduler  `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	WriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	AllowOrigins []string      `mapstructure:"server_allow_origins"`
}

type Database struct {
	DSN            string `mapstructure:"-"`
	Driver         string `mapstructure:"database_driver"`
	Password       string `mapstructure:"database_password"`
	URL            string `mapstructure:"database_url"`
	User           string `mapstructure:"database_user"`
	MigrationsPath string `mapstructure:"database_migrations_path"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

// Encryption.Key nunca deve aparecer em log
type Encryption struct {
	Key          string   `mapstructure:"encryption_key"`
	PreviousKeys []string `mapstructure:"encryption_previous_keys"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type OAuth struct {
	RedirectBaseURL    string        `mapstructure:"oauth_redirect_base_url"`
	StateTTL           time.Duration `mapstructure:"oauth_state_ttl"`
	DefaultReturnTo    string        `mapstructure:"oauth_default_return_to"`
	AllowedReturnHosts []string      `mapstructure:"oauth_allowed_return_hosts"`
}

// ReturnToAllowed aceita apenas URLs absolutas http(s) cujo host está em AllowedReturnHosts.
// Entradas sem porta casam qualquer porta do mesmo host.
func (o OAuth) ReturnToAllowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.User != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Host)
	hostname := strings.ToLower(u.Hostname())
	for _, allowed := range o.AllowedReturnHosts {
		allowed = strings.ToLower(allowed)
		if allowed == host || allowed == hostname {
			return true
		}
	}
	return false
}

type Meta struct {
	BaseURL   string `mapstructure:"meta_base_url"`
	DialogURL string `mapstructure:"meta_dialog_url"`
	URL       string `mapstructure:"meta_url"`
	Version   string `mapstructure:"meta_version"`
	AppID     string `mapstructure:"meta_app_id"`
	AppSecret string `mapstructure:"meta_app_secret"`
	Scopes    string `mapstructure:"meta_scopes"`
}

type Google struct {
	AuthURL        string `mapstructure:"google_auth_url"`
	TokenURL       string `mapstructure:"google_token_url"`
	AdsURL         string `mapstructure:"google_ads_url"`
	ClientID       string `mapstructure:"google_client_id"`
	ClientSecret   string `mapstructure:"google_client_secret"`
	DeveloperToken string `mapstructure:"google_developer_token"`
	LoginCustomer  string `mapstructure:"google_login_customer_id"`
}

type TikTok struct {
	AuthURL string `mapstructure:"tiktok_auth_url"`
	URL     string `mapstructure:"tiktok_url"`
	AppID   string `mapstructure:"tiktok_app_id"`
	Secret  string `mapstructure:"tiktok_secret"`
}

type Naver struct {
	URL string `mapstructure:"naver_url"`
}

// RateLimit define o teto de requisições por segundo em cada plataforma
type RateLimit struct {
	MetaRPS     float64       `mapstructure:"rate_limit_meta_rps"`
	GoogleRPS   float64       `mapstructure:"rate_limit_google_rps"`
	TikTokRPS   float64       `mapstructure:"rate_limit_tiktok_rps"`
	NaverRPS    float64       `mapstructure:"rate_limit_naver_rps"`
	Burst       int           `mapstructure:"rate_limit_burst"`
	HTTPTimeout time.Duration `mapstructure:"rate_limit_http_timeout"`
}

func (r RateLimit) RPS(p domain.Platform) float64 {
	switch p {
	case domain.PlatformMeta:
		return r.MetaRPS
	case domain.PlatformGoogle:
		return r.GoogleRPS
	case domain.PlatformTikTok:
		return r.TikTokRPS
	case domain.PlatformNaver:
		return r.NaverRPS
	}
	return 1
}

type Sync struct {
	Timeout         time.Duration `mapstructure:"sync_timeout"`
	CacheTTL        time.Duration `mapstructure:"sync_cache_ttl"`
	CacheMaxEntries int           `mapstructure:"sync_cache_max_entries"`
	RefreshWindow   time.Duration `mapstructure:"sync_refresh_window"`
}

type Scheduler struct {
	CronSchedule        string `mapstructure:"scheduler_sync_cron"`
	LookbackDays        int    `mapstructure:"scheduler_sync_lookback_days"`
	RequestDelaySeconds int    `mapstructure:"scheduler_sync_request_delay_seconds"`
	MaxConcurrentJobs   int    `mapstructure:"scheduler_sync_max_concurrent_jobs"`
	Enabled             bool   `mapstructure:"scheduler_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "120s")
	viper.SetDefault("SERVER_ALLOW_ORIGINS", "*")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/adsync?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MIGRATIONS_PATH", "file://migrations")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	// Sem default para ENCRYPTION_KEY: a aplicação não sobe sem ela
	viper.SetDefault("ENCRYPTION_KEY", "")
	viper.SetDefault("ENCRYPTION_PREVIOUS_KEYS", "")

	viper.SetDefault("AUTH_SECRET", "your_secret_key")

	viper.SetDefault("OAUTH_REDIRECT_BASE_URL", "http://localhost:8000/api/v1/oauth")
	viper.SetDefault("OAUTH_STATE_TTL", "10m")
	viper.SetDefault("OAUTH_DEFAULT_RETURN_TO", "http://localhost:3000/integrations")
	viper.SetDefault("OAUTH_ALLOWED_RETURN_HOSTS", "") // vazio: só o host de OAUTH_DEFAULT_RETURN_TO

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_DIALOG_URL", "https://www.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")
	viper.SetDefault("META_SCOPES", "ads_read,business_management")

	viper.SetDefault("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth")
	viper.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_URL", "https://googleads.googleapis.com/v17")
	viper.SetDefault("GOOGLE_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_DEVELOPER_TOKEN", "your_developer_token")
	viper.SetDefault("GOOGLE_LOGIN_CUSTOMER_ID", "")

	viper.SetDefault("TIKTOK_AUTH_URL", "https://business-api.tiktok.com/portal/auth")
	viper.SetDefault("TIKTOK_URL", "https://business-api.tiktok.com/open_api/v1.3")
	viper.SetDefault("TIKTOK_APP_ID", "your_app_id")
	viper.SetDefault("TIKTOK_SECRET", "your_secret")

	viper.SetDefault("NAVER_URL", "https://api.searchad.naver.com")

	viper.SetDefault("RATE_LIMIT_META_RPS", 5)
	viper.SetDefault("RATE_LIMIT_GOOGLE_RPS", 5)
	viper.SetDefault("RATE_LIMIT_TIKTOK_RPS", 5)
	viper.SetDefault("RATE_LIMIT_NAVER_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 2)
	viper.SetDefault("RATE_LIMIT_HTTP_TIMEOUT", "30s")

	viper.SetDefault("SYNC_TIMEOUT", "5m")
	viper.SetDefault("SYNC_CACHE_TTL", "15m")
	viper.SetDefault("SYNC_CACHE_MAX_ENTRIES", 1000)
	viper.SetDefault("SYNC_REFRESH_WINDOW", "24h") // renova tokens que expiram nas próximas 24h

	viper.SetDefault("SCHEDULER_SYNC_CRON", "0 3 * * *")        // Todos os dias às 3h da manhã
	viper.SetDefault("SCHEDULER_SYNC_LOOKBACK_DAYS", 7)         // 7 dias para buscar dados
	viper.SetDefault("SCHEDULER_SYNC_REQUEST_DELAY_SECONDS", 2) // 2 segundos entre contas
	viper.SetDefault("SCHEDULER_SYNC_MAX_CONCURRENT_JOBS", 3)   // 3 jobs concorrentes
	viper.SetDefault("SCHEDULER_SYNC_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Load lê a configuração sem validar; usado por ferramentas que só precisam do banco
func Load() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.finalize()

	return config, nil
}

func (c *Config) finalize() {
	c.Meta.URL = fmt.Sprintf("%s/%s", c.Meta.BaseURL, c.Meta.Version)

	c.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		c.Database.Driver,
		c.Database.User,
		c.Database.Password,
		c.Database.URL,
	)

	c.Encryption.PreviousKeys = compact(c.Encryption.PreviousKeys)
	c.Server.AllowOrigins = compact(c.Server.AllowOrigins)

	c.OAuth.AllowedReturnHosts = compact(c.OAuth.AllowedReturnHosts)
	if len(c.OAuth.AllowedReturnHosts) == 0 {
		if u, err := url.Parse(c.OAuth.DefaultReturnTo); err == nil && u.Host != "" {
			c.OAuth.AllowedReturnHosts = []string{u.Host}
		}
	}
}

// Validate falha cedo para o que impediria a aplicação de funcionar
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Encryption.Key) == "" {
		return &domain.ConfigurationError{Field: "encryption_key", Reason: "is not set"}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return &domain.ConfigurationError{Field: "auth_secret", Reason: "is not set"}
	}
	if c.Sync.Timeout <= 0 {
		return &domain.ConfigurationError{Field: "sync_timeout", Reason: "must be positive"}
	}
	if !c.OAuth.ReturnToAllowed(c.OAuth.DefaultReturnTo) {
		return &domain.ConfigurationError{Field: "oauth_default_return_to", Reason: "host is not in oauth_allowed_return_hosts"}
	}
	return nil
}

// RedirectURI monta a URL de callback registrada em cada plataforma
func (c *Config) RedirectURI(p domain.Platform) string {
	return strings.TrimRight(c.OAuth.RedirectBaseURL, "/") + "/" + p.Lower() + "/callback"
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
