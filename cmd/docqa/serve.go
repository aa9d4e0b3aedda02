package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/docqa/answer"
	"github.com/a-h/docqa/categories"
	"github.com/a-h/docqa/generate"
	querypost "github.com/a-h/docqa/handlers/query/post"
	"github.com/a-h/docqa/prompt"
	"github.com/a-h/docqa/selection"
	"github.com/rs/cors"
)

type ServeCommand struct {
	DataDir        string        `help:"The directory containing one sub-directory per category." env:"DATA_DIR" default:"data"`
	CategoriesFile string        `help:"A YAML file mapping categories and aliases to directories." env:"CATEGORIES_FILE" default:""`
	OllamaURL      string        `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://localhost:11434"`
	Model          string        `help:"The model used to answer questions." env:"MODEL" default:"llama3.2"`
	Preset         string        `help:"The prompt preset, one of invoice-qa or invoice-calculator." env:"PRESET" default:"invoice-qa"`
	PreambleFile   string        `help:"A file containing a preamble that replaces the preset's preamble." env:"PREAMBLE_FILE" default:""`
	ForceJSON      bool          `help:"Ask the model for JSON output." env:"FORCE_JSON" default:"true" negatable:""`
	Timeout        time.Duration `help:"The maximum time to wait for the model." env:"GENERATE_TIMEOUT" default:"60s"`
	Retries        uint64        `help:"The number of times to retry when the model server can't be reached." env:"GENERATE_RETRIES" default:"0"`
	FallbackLimit  int           `help:"The number of documents to use when no document matches the query." env:"FALLBACK_LIMIT" default:"2"`
	ListenAddr     string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:8001"`
	TLSCertFile    string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile     string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel       string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func readFileOrDefault(filename, defaultContent string) (string, error) {
	if filename == "" {
		return defaultContent, nil
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(contents), nil
}

func (c ServeCommand) loadCategories() (categories.Table, error) {
	if c.CategoriesFile == "" {
		return categories.Default(c.DataDir), nil
	}
	return categories.LoadFromFile(c.DataDir, c.CategoriesFile)
}

func (c ServeCommand) loadPreset() (p prompt.Preset, err error) {
	p, ok := prompt.Lookup(c.Preset)
	if !ok {
		return p, fmt.Errorf("unknown preset %q, expected one of %s", c.Preset, strings.Join(prompt.Names(), ", "))
	}
	p.Preamble, err = readFileOrDefault(c.PreambleFile, p.Preamble)
	if err != nil {
		return p, fmt.Errorf("failed to read preamble: %w", err)
	}
	return p, nil
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	table, err := c.loadCategories()
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if _, err = table.Open(""); err != nil {
		log.Warn("default category is not available", slog.Any("error", err))
	}
	preset, err := c.loadPreset()
	if err != nil {
		return err
	}

	log.Info("creating generation client", slog.String("url", c.OllamaURL), slog.String("model", c.Model), slog.String("preset", preset.Name))
	gc := generate.New(c.OllamaURL)
	gc.Timeout = c.Timeout
	var g generate.Generator = gc
	if c.Retries > 0 {
		g = generate.Retry(gc, c.Retries)
	}

	selector := selection.New()
	selector.FallbackLimit = c.FallbackLimit

	svc := answer.New(log, table, selector, prompt.New(preset), g, c.Model, c.ForceJSON)

	mux := http.NewServeMux()
	mux.Handle("POST /query", querypost.New(log, svc))
	withCORSMux := cors.AllowAll().Handler(mux)

	log.Info("Listening", slog.String("addr", c.ListenAddr), slog.String("dataDir", c.DataDir))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: withCORSMux,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}
