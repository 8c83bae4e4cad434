package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wcckavaliers/scorebook/internal/platform/logging"
	"github.com/wcckavaliers/scorebook/internal/platform/resilience"
	"github.com/wcckavaliers/scorebook/internal/usecase"
)

const (
	defaultBaseURL         = "https://generativelanguage.googleapis.com"
	defaultTimeout         = 60 * time.Second
	maxResponseBytes       = 6 << 20
	abbreviatedBodyMaxSize = 300
)

var apiKeyParamRegex = regexp.MustCompile(`key=[^&\s"']+`)

// errGeminiTransient marks failures that should trip the circuit breaker:
// transport errors, overload, and 5xx responses. A missing model is not a
// provider health signal and stays unmarked.
var errGeminiTransient = crerr.New("gemini transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Gemini generative-language API. It implements
// usecase.TextGenerator: model discovery plus single-prompt generation, with
// provider failures classified into the sentinels the extraction rotation
// understands.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type modelListEnvelope struct {
	Models []modelItem `json:"models"`
}

type modelItem struct {
	Name                       string   `json:"name"`
	Description                string   `json:"description"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// ListModels discovers the generation-capable model IDs. Deprecated,
// embedding, and lite-tier entries are filtered out, and the remainder is
// reversed so the newest listed model is tried first.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var envelope modelListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/v1beta/models", nil, &envelope); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(envelope.Models))
	for _, item := range envelope.Models {
		id := strings.TrimPrefix(strings.TrimSpace(item.Name), "models/")
		if id == "" || !isUsableModel(id, item) {
			continue
		}
		ids = append(ids, id)
	}

	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	return ids, nil
}

func isUsableModel(id string, item modelItem) bool {
	lowered := strings.ToLower(id)
	if strings.Contains(lowered, "embed") ||
		strings.Contains(lowered, "lite") ||
		strings.Contains(lowered, "vision") ||
		strings.Contains(strings.ToLower(item.Description), "deprecated") {
		return false
	}
	if len(item.SupportedGenerationMethods) == 0 {
		return true
	}
	for _, method := range item.SupportedGenerationMethods {
		if strings.EqualFold(method, "generateContent") {
			return true
		}
	}
	return false
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateEnvelope struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends one prompt to the named model and returns the concatenated
// text of the first candidate.
func (c *Client) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return "", fmt.Errorf("model id is required")
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(modelID))
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	var envelope generateEnvelope
	if err := c.doJSON(ctx, http.MethodPost, path, body, &envelope); err != nil {
		return "", fmt.Errorf("generate model=%s: %w", modelID, err)
	}

	if len(envelope.Candidates) == 0 {
		return "", fmt.Errorf("%w: model %q returned no candidates", usecase.ErrProviderUnavailable, modelID)
	}

	var sb strings.Builder
	for _, p := range envelope.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: model %q returned an empty response", usecase.ErrProviderUnavailable, modelID)
	}

	return text, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "gemini circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: text generation provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)

	execute := func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, method, fullURL, body)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	}

	var raw []byte
	var err error
	if method == http.MethodGet {
		// Concurrent model discovery collapses into one upstream call.
		var out any
		out, err, _ = c.flight.Do(method+" "+path, func() (any, error) {
			return execute()
		})
		if err == nil {
			var ok bool
			if raw, ok = out.([]byte); !ok {
				return fmt.Errorf("unexpected response payload type %T", out)
			}
		}
	} else {
		raw, err = execute()
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Mark(
			fmt.Errorf("%w: send request: %s", usecase.ErrProviderUnavailable, sanitizeSensitiveText(err.Error(), c.apiKey)),
			errGeminiTransient,
		)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, crerr.Mark(
			fmt.Errorf("%w: read response body: %v", usecase.ErrProviderUnavailable, readErr),
			errGeminiTransient,
		)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	statusErr := classifyStatus(resp.StatusCode, raw)
	c.logger.WarnContext(ctx, "gemini request failed",
		"url", redactAPIURL(fullURL),
		"status", resp.StatusCode,
		"error", statusErr,
	)
	return nil, statusErr
}

// classifyStatus maps provider HTTP failures onto the rotation's error
// taxonomy: overload and transient 5xx rotate, a vanished model rotates,
// everything else is fatal.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return crerr.Mark(fmt.Errorf("%w: status=%d body=%s", usecase.ErrProviderOverloaded, status, abbreviateBody(body)), errGeminiTransient)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status=%d body=%s", usecase.ErrModelNotFound, status, abbreviateBody(body))
	case status >= 500:
		return crerr.Mark(fmt.Errorf("%w: status=%d body=%s", usecase.ErrProviderUnavailable, status, abbreviateBody(body)), errGeminiTransient)
	default:
		return fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body))
	}
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, errGeminiTransient)
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > abbreviatedBodyMaxSize {
		return text[:abbreviatedBodyMaxSize] + "..."
	}
	return text
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "key=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "key=REDACTED")
}
