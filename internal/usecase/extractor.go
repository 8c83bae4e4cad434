package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

const defaultGenerateTimeout = 45 * time.Second

// TextGenerator is the abstract text-generation capability the extractor
// delegates language understanding to.
type TextGenerator interface {
	ListModels(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

// ReportExtractor turns raw scorecard text into a structured match report,
// rotating across the provider's models on recoverable failures.
type ReportExtractor struct {
	gen             TextGenerator
	preferredModel  string
	generateTimeout time.Duration
	logger          *logging.Logger
}

func NewReportExtractor(gen TextGenerator, preferredModel string, generateTimeout time.Duration, logger *logging.Logger) *ReportExtractor {
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ReportExtractor{
		gen:             gen,
		preferredModel:  strings.TrimSpace(preferredModel),
		generateTimeout: generateTimeout,
		logger:          logger,
	}
}

// Extract requests a structured transformation of the report text from the
// current model candidate, rotating on recoverable provider failures until
// the retry budget (one unit per candidate) is spent. A response that decodes
// but does not match the scorecard shape is a data problem, not a provider
// problem: it fails with ErrMalformedExtraction and is never retried.
func (e *ReportExtractor) Extract(ctx context.Context, rawText string) (match.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportExtractor.Extract")
	defer span.End()

	if strings.TrimSpace(rawText) == "" {
		return match.Report{}, fmt.Errorf("%w: report text is required", ErrInvalidInput)
	}

	discovered, err := e.gen.ListModels(ctx)
	if err != nil {
		return match.Report{}, fmt.Errorf("%w: list models: %v", ErrDependencyUnavailable, err)
	}

	rotation, err := newModelRotation(e.preferredModel, discovered)
	if err != nil {
		return match.Report{}, err
	}

	prompt := buildExtractionPrompt(rawText)

	var lastErr error
	for {
		modelID := rotation.Current()
		raw, genErr := e.generateWithTimeout(ctx, modelID, prompt)
		if genErr == nil {
			report, decodeErr := decodeReport(raw)
			if decodeErr != nil {
				return match.Report{}, decodeErr
			}
			e.logger.InfoContext(ctx, "scorecard extracted", "model", modelID, "rotations", rotation.Rotations())
			return report, nil
		}

		if !isRecoverable(genErr) {
			return match.Report{}, fmt.Errorf("generate with model %q: %w", modelID, genErr)
		}

		lastErr = genErr
		e.logger.WarnContext(ctx, "extraction model failed, rotating", "model", modelID, "error", genErr)
		rotation.Advance()
		if rotation.Exhausted() {
			return match.Report{}, fmt.Errorf("%w: last error from %q: %v", ErrAllProvidersExhausted, modelID, lastErr)
		}
	}
}

func (e *ReportExtractor) generateWithTimeout(ctx context.Context, modelID, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.generateTimeout)
	defer cancel()
	return e.gen.Generate(attemptCtx, modelID, prompt)
}

func decodeReport(raw string) (match.Report, error) {
	payload := stripCodeFence(raw)

	var report match.Report
	if err := sonic.Unmarshal([]byte(payload), &report); err != nil {
		return match.Report{}, fmt.Errorf("%w: decode response: %v", ErrMalformedExtraction, err)
	}
	if err := report.Validate(); err != nil {
		return match.Report{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	return report, nil
}

// stripCodeFence removes a markdown code fence wrapper ("```json ... ```")
// some models add around their JSON output.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		// Drop the language hint on the opening fence line.
		if !strings.ContainsAny(text[:idx], "{[") {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

func buildExtractionPrompt(rawText string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(`You are given the plain text of a cricket match report extracted from a PDF.
Convert it into a single JSON object with this exact shape:

{
  "matchInfo": {
    "teams": ["<team 1>", "<team 2>"],
    "date": "", "venue": "", "format": "", "toss": "", "result": "", "playerOfMatch": ""
  },
  "innings": [
    {
      "team": "", "total": "", "overs": "", "runRate": 0, "extras": "",
      "batsmen": [{"name": "", "runs": 0, "balls": 0, "fours": 0, "sixes": 0, "sr": 0, "outDesc": ""}],
      "bowlers": [{"name": "", "overs": 0, "maidens": 0, "runs": 0, "wickets": 0, "eco": 0, "dots": 0, "fours": 0, "sixes": 0, "wd": 0, "nb": 0}],
      "fallOfWickets": [""]
    }
  ]
}

Rules:
- Preserve the exact spacing and capitalization of every player and team name as printed.
- If a name has clearly lost the space between two words (for example "ViratKohli"), repair it.
- Normalize each dismissal description to a consistent code form: "c <fielder> b <bowler>", "b <bowler>", "lbw b <bowler>", "run out", "st <keeper> b <bowler>", "retired hurt", "not out" - with a single space between the code prefix and any player name.
- Respond with the JSON object only, no commentary.

Report text:
`)
	_, _ = buf.WriteString(rawText)

	return buf.String()
}
