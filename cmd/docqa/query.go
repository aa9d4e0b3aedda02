package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/models"
)

type QueryCommand struct {
	ServerURL string `help:"The URL of the document Q&A server." env:"DOCQA_SERVER_URL" default:"http://localhost:8001"`
	Category  string `help:"The document category to query, e.g. invoices, contracts, support, knowledge." env:"CATEGORY" default:""`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
	Text      string `arg:"" help:"The question to ask."`
}

func (c QueryCommand) Run(ctx context.Context) (err error) {
	rsc := client.New(c.ServerURL)
	resp, err := rsc.QueryPost(ctx, models.QueryPostRequest{
		Query:    c.Text,
		Category: c.Category,
	})
	var qe client.QueryError
	if errors.As(err, &qe) {
		resp = qe.Response
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	if encErr := enc.Encode(resp); encErr != nil {
		return encErr
	}
	return err
}
