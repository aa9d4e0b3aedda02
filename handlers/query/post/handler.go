package post

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/docqa/answer"
	"github.com/a-h/docqa/models"
	"github.com/a-h/respond"
)

type Answerer interface {
	Answer(ctx context.Context, q answer.Query) (answer.Result, error)
}

func New(log *slog.Logger, answerer Answerer) Handler {
	return Handler{
		log:      log,
		answerer: answerer,
	}
}

type Handler struct {
	log      *slog.Logger
	answerer Answerer
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.QueryPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}

	result, err := h.answerer.Answer(r.Context(), answer.Query{
		Text:     req.Query,
		Category: req.Category,
	})
	resp := models.QueryPostResponse{
		Answer:    result.Answer,
		UsedFiles: result.UsedFiles,
	}
	if resp.UsedFiles == nil {
		resp.UsedFiles = []string{}
	}
	if err != nil {
		status := statusOf(err)
		h.log.Error("failed to answer query", slog.Any("error", err), slog.Int("status", status), slog.Any("usedFiles", resp.UsedFiles))
		resp.Answer = nil
		resp.Error = err.Error()
		respond.WithJSON(w, resp, status)
		return
	}

	respond.WithJSON(w, resp, http.StatusOK)
}

func statusOf(err error) int {
	var ae *answer.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	if ae.Kind == answer.KindBackendTimeout {
		return http.StatusGatewayTimeout
	}
	switch ae.Kind.Class() {
	case answer.ClassClient:
		return http.StatusBadRequest
	case answer.ClassUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
