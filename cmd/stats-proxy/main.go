// Command stats-proxy exposes the stats client as a small HTTP sidecar:
// local services call /stats/<endpoint> and the proxy handles headers,
// retries, and rate-limit cooldowns on their behalf.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/courtdata/fastbreak-go/pkg/api"
	"github.com/courtdata/fastbreak-go/pkg/client"
	"github.com/courtdata/fastbreak-go/pkg/logging"
)

func main() {
	logging.SetupFromEnv()

	port := getEnv("PORT", "8080")
	redisURL := os.Getenv("REDIS_URL")

	cfg := client.DefaultConfig()

	// Redis is optional: with it, sibling proxies share 429 cooldowns.
	var redisClient *redis.Client
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		cfg.Redis = redisClient
		log.Info().Str("addr", redisURL).Msg("Sharing rate limit state via Redis")
	}

	statsClient, err := client.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stats client")
	}
	defer statsClient.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(redisClient))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/stats/", statsProxyHandler(statsClient))

	addr := ":" + port
	log.Info().Str("addr", addr).Msg("Starting stats proxy server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports readiness. Without Redis the proxy is always
// ready; with Redis a failing ping makes it not ready, since cooldown
// sharing is part of the contract the caller opted into.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// statsProxyHandler forwards /stats/<endpoint>?<query> to the stats API.
// Query parameter order is preserved so the upstream URL matches what the
// caller wrote.
func statsProxyHandler(statsClient *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/stats/")
		if path == "" || strings.Contains(path, "/") {
			http.Error(w, "expected /stats/<endpoint>", http.StatusBadRequest)
			return
		}

		params, err := parseOrderedQuery(r.URL.RawQuery)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad query: %v", err), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		body, err := statsClient.Get(ctx, api.NewEndpoint(path, params...))
		if err != nil {
			writeProxyError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			log.Warn().Err(err).Str("endpoint", path).Msg("Failed to write response")
		}
	}
}

// parseOrderedQuery splits a raw query string into parameters without
// losing their order, unlike url.Values.
func parseOrderedQuery(rawQuery string) ([]api.Param, error) {
	if rawQuery == "" {
		return nil, nil
	}
	var params []api.Param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("invalid escape in %q", key)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("invalid escape in %q", value)
		}
		params = append(params, api.Param{Key: k, Value: v})
	}
	return params, nil
}

// writeProxyError maps a client error to an HTTP status: terminal 4xx
// pass through as 502 with detail, cancellations become 504.
func writeProxyError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, client.ErrContextCancelled) {
		status = http.StatusGatewayTimeout
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Class == client.ErrorClassClient {
		// The caller asked for something the API rejects; tell them.
		status = http.StatusBadRequest
	}
	http.Error(w, fmt.Sprintf("stats request failed: %v", err), status)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
