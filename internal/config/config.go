package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheEnabled                bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	PprofEnabled                bool
	PprofAddr                   string
	UptraceEnabled              bool
	UptraceDSN                  string
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	GeminiBaseURL               string
	GeminiAPIKey                string
	GeminiTimeout               time.Duration
	GeminiPreferredModel        string
	GeminiCircuitEnabled        bool
	GeminiCircuitFailureCount   int
	GeminiCircuitOpenTimeout    time.Duration
	GeminiCircuitHalfOpenMaxReq int
	MailEnabled                 bool
	SMTPHost                    string
	SMTPPort                    int
	SMTPUsername                string
	SMTPPassword                string
	MailFrom                    string
	MailTo                      []string
	MailPoolSize                int
	KeepAliveEnabled            bool
	KeepAliveTargetURL          string
	KeepAlivePingTimeout        time.Duration
	LogLevel                    logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofAddr == "" {
		pprofAddr = ":6060"
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	geminiAPIKey := strings.TrimSpace(getEnv("GEMINI_API_KEY", ""))
	if geminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is required")
	}
	geminiTimeout, err := time.ParseDuration(getEnv("GEMINI_TIMEOUT", "90s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_TIMEOUT: %w", err)
	}
	if geminiTimeout <= 0 {
		return Config{}, fmt.Errorf("GEMINI_TIMEOUT must be > 0")
	}
	geminiCircuitEnabled, err := strconv.ParseBool(getEnv("GEMINI_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_CIRCUIT_ENABLED: %w", err)
	}
	geminiCircuitFailureCount, err := getEnvAsInt("GEMINI_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if geminiCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("GEMINI_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	geminiCircuitOpenTimeout, err := time.ParseDuration(getEnv("GEMINI_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if geminiCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("GEMINI_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	geminiCircuitHalfOpenMaxReq, err := getEnvAsInt("GEMINI_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if geminiCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("GEMINI_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	mailEnabled, err := strconv.ParseBool(getEnv("MAIL_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MAIL_ENABLED: %w", err)
	}
	smtpHost := strings.TrimSpace(getEnv("SMTP_HOST", ""))
	smtpPort, err := getEnvAsInt("SMTP_PORT", 587)
	if err != nil {
		return Config{}, fmt.Errorf("parse SMTP_PORT: %w", err)
	}
	mailFrom := strings.TrimSpace(getEnv("MAIL_FROM", ""))
	mailTo := splitCSV(getEnv("MAIL_TO", ""))
	mailPoolSize, err := getEnvAsInt("MAIL_POOL_SIZE", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAIL_POOL_SIZE: %w", err)
	}
	if mailPoolSize < 1 {
		return Config{}, fmt.Errorf("MAIL_POOL_SIZE must be >= 1")
	}
	if mailEnabled {
		if smtpHost == "" {
			return Config{}, fmt.Errorf("SMTP_HOST is required when MAIL_ENABLED=true")
		}
		if mailFrom == "" {
			return Config{}, fmt.Errorf("MAIL_FROM is required when MAIL_ENABLED=true")
		}
		if len(mailTo) == 0 {
			return Config{}, fmt.Errorf("MAIL_TO is required when MAIL_ENABLED=true")
		}
	}

	keepAliveEnabled, err := strconv.ParseBool(getEnv("KEEPALIVE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KEEPALIVE_ENABLED: %w", err)
	}
	keepAliveTargetURL := strings.TrimSpace(getEnv("KEEPALIVE_TARGET_URL", ""))
	if keepAliveEnabled && keepAliveTargetURL == "" {
		return Config{}, fmt.Errorf("KEEPALIVE_TARGET_URL is required when KEEPALIVE_ENABLED=true")
	}
	keepAlivePingTimeout, err := time.ParseDuration(getEnv("KEEPALIVE_PING_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KEEPALIVE_PING_TIMEOUT: %w", err)
	}
	if keepAlivePingTimeout <= 0 {
		return Config{}, fmt.Errorf("KEEPALIVE_PING_TIMEOUT must be > 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "120s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "scorebook-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		CacheEnabled:                cacheEnabled,
		CacheTTL:                    cacheTTL,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		GeminiBaseURL:               strings.TrimSpace(getEnv("GEMINI_BASE_URL", "")),
		GeminiAPIKey:                geminiAPIKey,
		GeminiTimeout:               geminiTimeout,
		GeminiPreferredModel:        strings.TrimSpace(getEnv("GEMINI_PREFERRED_MODEL", "")),
		GeminiCircuitEnabled:        geminiCircuitEnabled,
		GeminiCircuitFailureCount:   geminiCircuitFailureCount,
		GeminiCircuitOpenTimeout:    geminiCircuitOpenTimeout,
		GeminiCircuitHalfOpenMaxReq: geminiCircuitHalfOpenMaxReq,
		MailEnabled:                 mailEnabled,
		SMTPHost:                    smtpHost,
		SMTPPort:                    smtpPort,
		SMTPUsername:                strings.TrimSpace(getEnv("SMTP_USERNAME", "")),
		SMTPPassword:                getEnv("SMTP_PASSWORD", ""),
		MailFrom:                    mailFrom,
		MailTo:                      mailTo,
		MailPoolSize:                mailPoolSize,
		KeepAliveEnabled:            keepAliveEnabled,
		KeepAliveTargetURL:          keepAliveTargetURL,
		KeepAlivePingTimeout:        keepAlivePingTimeout,
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
