package post

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/docqa/answer"
	"github.com/a-h/docqa/models"
	"github.com/google/go-cmp/cmp"
)

type answererFunc func(q answer.Query) (answer.Result, error)

func (f answererFunc) Answer(ctx context.Context, q answer.Query) (answer.Result, error) {
	return f(q)
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		result           answer.Result
		err              error
		expectedQuery    answer.Query
		expectedStatus   int
		expectedResponse models.QueryPostResponse
	}{
		{
			name: "answers are returned with the used files",
			body: `{"query":"what is the total on inv_001","category":"invoices"}`,
			result: answer.Result{
				Answer:    json.RawMessage(`{"answer":"120.00 EUR"}`),
				UsedFiles: []string{"inv_001.txt"},
			},
			expectedQuery:  answer.Query{Text: "what is the total on inv_001", Category: "invoices"},
			expectedStatus: http.StatusOK,
			expectedResponse: models.QueryPostResponse{
				Answer:    json.RawMessage(`{"answer":"120.00 EUR"}`),
				UsedFiles: []string{"inv_001.txt"},
			},
		},
		{
			name:           "the category is optional",
			body:           `{"query":"hello"}`,
			result:         answer.Result{Answer: json.RawMessage(`{"raw":"hi"}`), UsedFiles: []string{"inv_001.txt"}},
			expectedQuery:  answer.Query{Text: "hello"},
			expectedStatus: http.StatusOK,
			expectedResponse: models.QueryPostResponse{
				Answer:    json.RawMessage(`{"raw":"hi"}`),
				UsedFiles: []string{"inv_001.txt"},
			},
		},
		{
			name:           "client errors return 400",
			body:           `{"query":"q","category":"knowledge"}`,
			err:            &answer.Error{Kind: answer.KindCategoryNotFound, Err: errors.New("category folder not found: data/knowledge-base")},
			expectedQuery:  answer.Query{Text: "q", Category: "knowledge"},
			expectedStatus: http.StatusBadRequest,
			expectedResponse: models.QueryPostResponse{
				UsedFiles: []string{},
				Error:     "category folder not found: data/knowledge-base",
			},
		},
		{
			name:           "backend errors return 502 with the used files",
			body:           `{"query":"inv_001"}`,
			result:         answer.Result{UsedFiles: []string{"inv_001.txt"}},
			err:            &answer.Error{Kind: answer.KindBackendError, Err: errors.New("generation backend error 500: model not loaded")},
			expectedQuery:  answer.Query{Text: "inv_001"},
			expectedStatus: http.StatusBadGateway,
			expectedResponse: models.QueryPostResponse{
				UsedFiles: []string{"inv_001.txt"},
				Error:     "generation backend error 500: model not loaded",
			},
		},
		{
			name:           "timeouts return 504",
			body:           `{"query":"inv_001"}`,
			result:         answer.Result{UsedFiles: []string{"inv_001.txt"}},
			err:            &answer.Error{Kind: answer.KindBackendTimeout, Err: errors.New("generation backend did not respond within 1m0s")},
			expectedQuery:  answer.Query{Text: "inv_001"},
			expectedStatus: http.StatusGatewayTimeout,
			expectedResponse: models.QueryPostResponse{
				UsedFiles: []string{"inv_001.txt"},
				Error:     "generation backend did not respond within 1m0s",
			},
		},
		{
			name:           "read failures return 500",
			body:           `{"query":"inv_001"}`,
			err:            &answer.Error{Kind: answer.KindDocumentReadFailure, Err: errors.New("permission denied")},
			expectedQuery:  answer.Query{Text: "inv_001"},
			expectedStatus: http.StatusInternalServerError,
			expectedResponse: models.QueryPostResponse{
				UsedFiles: []string{},
				Error:     "permission denied",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actualQuery answer.Query
			h := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), answererFunc(func(q answer.Query) (answer.Result, error) {
				actualQuery = q
				return tt.result, tt.err
			}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(tt.body)))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if diff := cmp.Diff(tt.expectedQuery, actualQuery); diff != "" {
				t.Error(diff)
			}
			var actual models.QueryPostResponse
			if err := json.NewDecoder(w.Body).Decode(&actual); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if diff := cmp.Diff(tt.expectedResponse, actual); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestHandlerInvalidBody(t *testing.T) {
	h := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), answererFunc(func(q answer.Query) (answer.Result, error) {
		t.Error("unexpected call to Answer")
		return answer.Result{}, nil
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader("{")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
