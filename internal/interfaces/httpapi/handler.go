package httpapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
	"github.com/wcckavaliers/scorebook/internal/usecase"
)

const maxUploadBytes = 25 << 20

// Streamer is the broadcast hub surface the SSE endpoint consumes.
type Streamer interface {
	Subscribe() (string, <-chan match.Report)
	Unsubscribe(id string)
}

type Handler struct {
	scorecards *usecase.ScorecardService
	teams      *usecase.TeamService
	stream     Streamer
	pdfText    func(io.Reader) (string, error)
	logger     *logging.Logger
}

func NewHandler(
	scorecards *usecase.ScorecardService,
	teams *usecase.TeamService,
	stream Streamer,
	pdfText func(io.Reader) (string, error),
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		scorecards: scorecards,
		teams:      teams,
		stream:     stream,
		pdfText:    pdfText,
		logger:     logger,
	}
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "pong"})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type ingestRequestDTO struct {
	Text string `json:"text"`
}

// IngestScorecard accepts either a multipart upload with a "pdf" file field
// or a JSON body carrying the raw report text.
func (h *Handler) IngestScorecard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestScorecard")
	defer span.End()

	rawText, err := h.readReportText(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.scorecards.Ingest(ctx, rawText)
	if err != nil {
		h.logger.WarnContext(ctx, "scorecard ingestion failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, report)
}

func (h *Handler) readReportText(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", fmt.Errorf("%w: parse multipart upload: %v", usecase.ErrInvalidInput, err)
		}
		file, _, err := r.FormFile("pdf")
		if err != nil {
			return "", fmt.Errorf("%w: a \"pdf\" file field is required", usecase.ErrInvalidInput)
		}
		defer func() {
			_ = file.Close()
		}()

		if h.pdfText == nil {
			return "", fmt.Errorf("%w: pdf uploads are not supported", usecase.ErrInvalidInput)
		}
		text, err := h.pdfText(file)
		if err != nil {
			return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
		}
		return text, nil
	}

	var dto ingestRequestDTO
	if err := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&dto); err != nil {
		return "", fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}

	return dto.Text, nil
}

func (h *Handler) RevertLastScorecard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RevertLastScorecard")
	defer span.End()

	if err := h.scorecards.RevertLast(ctx); err != nil {
		h.logger.WarnContext(ctx, "scorecard revert failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "reverted"})
}

func (h *Handler) ListScorecards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScorecards")
	defer span.End()

	reports, err := h.scorecards.GetAllMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list scorecards failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if reports == nil {
		reports = []match.Report{}
	}

	writeSuccess(ctx, w, http.StatusOK, reports)
}

func (h *Handler) ListPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerStats")
	defer span.End()

	records, err := h.scorecards.GetPlayerStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list player stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, records)
}

type renamePlayerDTO struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

func (h *Handler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenamePlayer")
	defer span.End()

	var dto renamePlayerDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.scorecards.RenamePlayer(ctx, dto.OldName, dto.NewName); err != nil {
		h.logger.WarnContext(ctx, "player rename failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teams.GetTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teams)
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTeam")
	defer span.End()

	var dto usecase.TeamProfileUpdate
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}

	team, err := h.teams.UpdateTeam(ctx, r.PathValue("teamID"), dto)
	if err != nil {
		h.logger.WarnContext(ctx, "team update failed", "team_id", r.PathValue("teamID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, team)
}
