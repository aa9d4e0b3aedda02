package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/a-h/docqa/models"
	"github.com/a-h/jsonapi"
)

func New(baseURL string) Client {
	return Client{
		baseURL: baseURL,
	}
}

type Client struct {
	baseURL string
}

// QueryPost asks a question. If the server rejects the query, the returned
// error is a QueryError carrying the server's response.
func (c Client) QueryPost(ctx context.Context, req models.QueryPostRequest) (resp models.QueryPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("query").String()
	if err != nil {
		return resp, err
	}
	resp, err = jsonapi.Post[models.QueryPostRequest, models.QueryPostResponse](ctx, url, req)
	if err != nil {
		var ise jsonapi.InvalidStatusError
		if errors.As(err, &ise) {
			return resp, newQueryError(ise)
		}
		var pise *jsonapi.InvalidStatusError
		if errors.As(err, &pise) {
			return resp, newQueryError(*pise)
		}
		return resp, err
	}
	return resp, nil
}

func newQueryError(ise jsonapi.InvalidStatusError) QueryError {
	qe := QueryError{Status: ise.Status}
	if err := json.Unmarshal([]byte(ise.Body), &qe.Response); err != nil || qe.Response.Error == "" {
		qe.Response.Error = ise.Body
	}
	return qe
}

type QueryError struct {
	Status   int
	Response models.QueryPostResponse
}

func (e QueryError) Error() string {
	return fmt.Sprintf("query failed with status %d: %s", e.Status, e.Response.Error)
}
