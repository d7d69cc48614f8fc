package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/rpsduel-go/internal/api/apierr"
	"github.com/mcoot/rpsduel-go/internal/api/response"
	"github.com/mcoot/rpsduel-go/internal/scoreboard"
)

// RankingsHandler serves scoreboard reads
type RankingsHandler struct {
	scoreboard *scoreboard.Service
}

// NewRankingsHandler creates a new rankings handler
func NewRankingsHandler(scoreboard *scoreboard.Service) *RankingsHandler {
	return &RankingsHandler{
		scoreboard: scoreboard,
	}
}

// Get handles GET /api/v1/rankings
func (h *RankingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := h.scoreboard.Rankings(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankingsFromRecords(records))
}
