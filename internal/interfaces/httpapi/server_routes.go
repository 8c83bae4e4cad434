package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /ping", handler.Ping)
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerScorecardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/scorecards", handler.IngestScorecard)
	mux.HandleFunc("DELETE /v1/scorecards/latest", handler.RevertLastScorecard)
	mux.HandleFunc("GET /v1/scorecards", handler.ListScorecards)
	mux.HandleFunc("GET /v1/scorecards/stream", handler.StreamScorecards)
	mux.HandleFunc("GET /v1/players/stats", handler.ListPlayerStats)
	mux.HandleFunc("POST /v1/players/rename", handler.RenamePlayer)
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("PUT /v1/teams/{teamID}", handler.UpdateTeam)
}
