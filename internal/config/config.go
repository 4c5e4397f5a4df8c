// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Константы окружений.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// MinSecretLen — минимальная длина секрета подписи JWT (HS256) в байтах.
const MinSecretLen = 32

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
//
// Перед чтением подхватывается .env (если есть): значения из него
// не перекрывают уже выставленные переменные окружения.
type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Cookie      CookieConfig      `yaml:"cookie"`
	DB          DBConfig          `yaml:"db"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Probe       ProbeConfig       `yaml:"probe"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service  time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — публичный HTTP-сервер.
type HTTPConfig struct {
	Host      string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port      string `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	StaticDir string `yaml:"static_dir" env:"HTTP_STATIC_DIR"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов и хэширования паролей.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"SECRET_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Argon2          Argon2Config  `yaml:"argon2"`
	BcryptCost      int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// Argon2Config — параметры argon2id (рабочий фактор хэширования).
type Argon2Config struct {
	Memory      uint32 `yaml:"memory_kib" env:"ARGON2_MEMORY_KIB" env-default:"65536"`
	Iterations  uint32 `yaml:"iterations" env:"ARGON2_ITERATIONS" env-default:"1"`
	Parallelism uint8  `yaml:"parallelism" env:"ARGON2_PARALLELISM" env-default:"4"`
	SaltLength  uint32 `yaml:"salt_length" env:"ARGON2_SALT_LENGTH" env-default:"16"`
	KeyLength   uint32 `yaml:"key_length" env:"ARGON2_KEY_LENGTH" env-default:"32"`
}

// CookieConfig — атрибуты cookie сессии.
// Secure включается под TLS; в local по умолчанию выключен.
type CookieConfig struct {
	AccessName  string `yaml:"access_name" env:"COOKIE_ACCESS_NAME" env-default:"access_token"`
	RefreshName string `yaml:"refresh_name" env:"COOKIE_REFRESH_NAME" env-default:"refresh_token"`
	Path        string `yaml:"path" env:"COOKIE_PATH" env-default:"/"`
	Domain      string `yaml:"domain" env:"COOKIE_DOMAIN"`
	Secure      bool   `yaml:"secure" env:"COOKIE_SECURE" env-default:"false"`
	SameSite    string `yaml:"same_site" env:"COOKIE_SAMESITE" env-default:"lax"`
}

// SameSiteMode переводит строковое значение в http.SameSite.
// Неизвестное значение трактуется как Lax (Validate его не пропустит).
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// DBConfig — настройки подключения к базе данных.
// Пустой DatabaseURL вне prod означает in-memory хранилище.
// AutoMigrate по умолчанию true, но без env-default: cleanenv считает false
// незаданным значением и перетёр бы явный false из YAML (см. defaults).
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// CredentialsConfig — ключ шифрования паролей внешних БД.
type CredentialsConfig struct {
	Key string `yaml:"key" env:"CREDENTIALS_KEY" env-required:"true"`
}

// ProbeConfig — проверка подключения к внешним БД.
type ProbeConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"PROBE_TIMEOUT" env-default:"5s"`
}

// Validate проверяет инварианты, без которых сервис не должен стартовать.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("unknown env %q", c.Env))
	}

	if len(c.Auth.JWTSecret) < MinSecretLen {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLen))
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}

	if c.Auth.AccessTokenTTL >= c.Auth.RefreshTokenTTL {
		errs = append(errs, errors.New("access token ttl must be shorter than refresh token ttl"))
	}

	if c.Auth.Argon2.Memory == 0 || c.Auth.Argon2.Iterations == 0 || c.Auth.Argon2.Parallelism == 0 {
		errs = append(errs, errors.New("argon2 parameters must be positive"))
	}

	switch strings.ToLower(c.Cookie.SameSite) {
	case "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			errs = append(errs, errors.New("samesite=none requires secure cookies"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown samesite %q", c.Cookie.SameSite))
	}

	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" || c.Cookie.AccessName == c.Cookie.RefreshName {
		errs = append(errs, errors.New("cookie names must be non-empty and distinct"))
	}

	if c.Credentials.Key == "" {
		errs = append(errs, errors.New("credentials key is required"))
	}

	if c.Env == EnvProd && c.DB.DatabaseURL == "" {
		errs = append(errs, errors.New("db url is required in prod"))
	}

	if c.Probe.Timeout <= 0 {
		errs = append(errs, errors.New("probe timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML,
// затем конфигурация проходит Validate.
func Load(path string) (*Config, error) {
	// .env не обязателен, ошибка отсутствия файла игнорируется.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults — значения, которые нельзя выразить через env-default.
func defaults() Config {
	return Config{
		DB: DBConfig{AutoMigrate: true},
	}
}

func read(path string) (*Config, error) {
	cfg := defaults()

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
