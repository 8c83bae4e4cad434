package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_GeminiAPIKeyRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when GEMINI_API_KEY is empty")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_GeminiDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GeminiTimeout != 90*time.Second {
		t.Fatalf("unexpected default gemini timeout: %s", cfg.GeminiTimeout)
	}
	if !cfg.GeminiCircuitEnabled {
		t.Fatalf("expected gemini circuit enabled by default")
	}
	if cfg.GeminiCircuitFailureCount != 5 {
		t.Fatalf("unexpected default gemini circuit failure count: %d", cfg.GeminiCircuitFailureCount)
	}
	if cfg.GeminiPreferredModel != "" {
		t.Fatalf("expected empty preferred model by default, got %q", cfg.GeminiPreferredModel)
	}
}

func TestLoad_MailRequiresHostFromAndToWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAIL_ENABLED", "true")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("MAIL_FROM", "")
	t.Setenv("MAIL_TO", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when MAIL_ENABLED=true without SMTP settings")
	}
}

func TestLoad_MailConfigParsing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAIL_ENABLED", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("MAIL_FROM", "scorebook@example.com")
	t.Setenv("MAIL_TO", " captain@example.com, scorer@example.com ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SMTPPort != 465 {
		t.Fatalf("unexpected SMTP port: %d", cfg.SMTPPort)
	}
	if len(cfg.MailTo) != 2 || cfg.MailTo[0] != "captain@example.com" {
		t.Fatalf("unexpected MailTo: %+v", cfg.MailTo)
	}
}

func TestLoad_KeepAliveRequiresTargetWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KEEPALIVE_ENABLED", "true")
	t.Setenv("KEEPALIVE_TARGET_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when KEEPALIVE_ENABLED=true without KEEPALIVE_TARGET_URL")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_SERVICE_NAME", "scorebook-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "scorebook-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://scorebook.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://scorebook.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_DBURLOptional(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DBURL, got %q", cfg.DBURL)
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatalf("expected DBDisablePreparedBinary=true by default")
	}
}
