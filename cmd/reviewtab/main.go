// Command reviewtab loads the review table of one project and prints the
// sorted rows to stdout.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/prodtrack/asset-review-client/pkg/client"
	"github.com/prodtrack/asset-review-client/pkg/enrich"
	"github.com/prodtrack/asset-review-client/pkg/logging"
	"github.com/prodtrack/asset-review-client/pkg/sorting"
	"github.com/prodtrack/asset-review-client/pkg/table"
)

func main() {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "false") == "true",
		Output: os.Stderr,
	})

	baseURL := getEnv("REVIEW_API_URL", "http://localhost:8080")
	token := getEnv("REVIEW_API_TOKEN", "")
	project := getEnv("REVIEW_PROJECT", "")
	userAgent := getEnv("USER_AGENT", "reviewtab/0.1.0")

	if project == "" {
		log.Fatal().Msg("REVIEW_PROJECT is required")
	}

	cfg := client.DefaultConfig(baseURL, token, userAgent)

	// Redis is optional: without it the client runs uncached and ungated
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		cfg.Redis = redisClient
		log.Info().Str("redis_url", redisURL).Msg("Connected to Redis")
	}

	apiClient, err := client.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create review API client")
	}
	defer apiClient.Close()

	// Optional Prometheus endpoint
	if metricsAddr := getEnv("METRICS_ADDR", ""); metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info().Str("addr", metricsAddr).Msg("Serving metrics")
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), getDuration("TIMEOUT", 5*time.Minute))
	defer cancel()

	tab := table.New(apiClient, table.Config{
		FetchPageSize:        getInt("FETCH_PAGE_SIZE", 100),
		MaxEnrichConcurrency: getInt("MAX_ENRICH_CONCURRENCY", 0),
	})
	defer tab.Close()

	if err := tab.Load(ctx, project); err != nil {
		if client.IsCancelled(err) {
			return
		}
		log.Fatal().Err(err).Str("project", project).Msg("Failed to load asset table")
	}

	if err := tab.WaitForEnrichment(ctx); err != nil && !client.IsCancelled(err) {
		log.Warn().Err(err).Msg("Enrichment wait interrupted")
	}

	if column := getEnv("SORT_COLUMN", ""); column != "" {
		tab.SetSort(column, sorting.Direction(getEnv("SORT_DIRECTION", "asc")))
	}

	printTable(tab, getInt("PAGE_SIZE", 50))
}

// printTable writes the sorted table page by page.
func printTable(tab *table.Table, pageSize int) {
	infos := tab.ReviewInfos()
	thumbs := tab.Thumbnails()

	for page := 0; ; page++ {
		result := tab.Rows(page, pageSize)

		for _, asset := range result.Items {
			thumbNote := "no thumbnail"
			if _, ok := thumbs[enrich.ThumbnailKey(asset.Name, asset.Relation)]; ok {
				thumbNote = "thumbnail"
			}

			fmt.Printf("%-30s %-10s %-12s", asset.Name, asset.Relation, thumbNote)
			for _, phase := range sorting.Phases {
				info, ok := infos[enrich.ReviewKey(asset.Name, asset.Relation, phase)]
				if !ok {
					fmt.Printf("  %s:-", phase)
					continue
				}
				fmt.Printf("  %s:%s/%s", phase, info.WorkStatus, info.ApprovalStatus)
			}
			fmt.Println()
		}

		if result.Page >= result.PageCount-1 {
			break
		}
	}

	fmt.Printf("\n%d assets, %d review records, %d thumbnails\n",
		len(tab.Assets()), len(infos), len(thumbs))
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt retrieves an integer environment variable or returns a default.
func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getDuration retrieves a duration environment variable or returns a default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
