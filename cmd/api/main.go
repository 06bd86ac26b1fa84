package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"archflow/internal/archpipe"
	"archflow/internal/config"
	"archflow/internal/llm"
	"archflow/internal/llmclient"
	"archflow/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	gemini, err := llmclient.NewGeminiClient(ctx, "", cfg.Model)
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}
	client := llm.Wrap(gemini,
		llm.WithLogging(nil),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	)
	defer client.Close()

	svc, err := archpipe.New(client, archpipe.Options{
		MaxRetries: cfg.MaxRetries,
		CacheSize:  cfg.CacheSize,
	})
	if err != nil {
		log.Fatalf("pipeline service: %v", err)
	}

	var store *report.S3Store
	if cfg.Report.Enabled {
		store, err = report.NewS3Store(report.S3Config{
			Endpoint:  cfg.Report.Endpoint,
			Region:    cfg.Report.Region,
			AccessKey: cfg.Report.AccessKey,
			SecretKey: cfg.Report.SecretKey,
			Bucket:    cfg.Report.Bucket,
			UseSSL:    cfg.Report.UseSSL,
		})
		if err != nil {
			log.Printf("report store disabled: %v", err)
			store = nil
		}
	}

	s := newAPIServer(svc, store)
	h := withCORS(buildMux(s))

	log.Printf("api listening on %s (env=%s, model=%s)", cfg.Port, cfg.Env, cfg.Model)
	if err := http.ListenAndServe(cfg.Port, h2c.NewHandler(h, &http2.Server{})); err != nil {
		log.Fatal(err)
	}
}

// withCORS mirrors the permissive CORS the frontend needs during
// development; restrict origins at the proxy in production.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
