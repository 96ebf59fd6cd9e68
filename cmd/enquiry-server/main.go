// cmd/enquiry-server/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bus-enquiry-engine/internal/common/config"
	"bus-enquiry-engine/internal/common/database"
	"bus-enquiry-engine/internal/common/logger"
	"bus-enquiry-engine/internal/enquiry"
	"bus-enquiry-engine/internal/intent"
	"bus-enquiry-engine/internal/models"
	"bus-enquiry-engine/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting enquiry server", map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"home_city":   cfg.Enquiry.HomeCity,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("postgres unavailable, giving up", nil)
		os.Exit(1)
	}
	defer pg.Close()

	var cache *enquiry.Cache
	if cfg.Enquiry.CacheEnabled {
		rdb, err := connectRedis(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, caching disabled", nil)
		} else {
			defer rdb.Close()
			cache = enquiry.NewCache(rdb.Client, config.GetDuration(cfg.Enquiry.CacheTTL), log)
		}
	}

	dispatcher := enquiry.NewDispatcher(enquiry.Config{
		HomeCity:     cfg.Enquiry.HomeCity,
		QueryTimeout: config.GetDuration(cfg.Enquiry.QueryTimeout),
	}, pg.DB, cache, log)

	synth := speech.NewNoOp(log)
	extractor := intent.NewClient(cfg.Intent, log)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Address, log)
	}

	runLoop(ctx, cfg, dispatcher, extractor, synth, log)
	log.Info("enquiry server stopped", nil)
}

// runLoop reads one request per line from stdin. A line starting with '{' is
// treated as a ready intent payload; anything else goes to the extraction
// service as transcript text first.
func runLoop(ctx context.Context, cfg *config.Config, d *enquiry.Dispatcher, extractor *intent.Client, synth speech.Synthesizer, log logger.Logger) {
	lines := readLines(ctx, os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			handleLine(ctx, cfg, d, extractor, synth, log, line)
		}
	}
}

// readLines feeds input lines to a channel and closes it on EOF or context
// cancellation, so the producer goroutine never outlives the consumer.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case lines <- scanner.Text():
			}
		}
	}()
	return lines
}

func handleLine(ctx context.Context, cfg *config.Config, d *enquiry.Dispatcher, extractor *intent.Client, synth speech.Synthesizer, log logger.Logger, line string) {
	rec, err := decodeLine(ctx, cfg, extractor, line)
	if err != nil {
		log.WithError(err).Warn("request rejected", nil)
		return
	}

	resp, err := d.Dispatch(ctx, rec)
	if err != nil {
		log.WithError(err).Warn("enquiry failed", nil)
		return
	}

	fmt.Println(resp.Text)
	if resp.Spoken && !resp.Empty() {
		if err := synth.Speak(ctx, resp.Text, cfg.Enquiry.Locale); err != nil {
			log.WithError(err).Warn("speech synthesis failed", nil)
		}
	}
}

func decodeLine(ctx context.Context, cfg *config.Config, extractor *intent.Client, line string) (models.IntentRecord, error) {
	if line[0] == '{' {
		return intent.Decode([]byte(line))
	}
	return extractor.Extract(ctx, line, cfg.Enquiry.Locale)
}

func connectPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(ctx, 5, 2*time.Second, func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, log, "postgres")
	return pg, err
}

func connectRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.RedisClient, error) {
	var rdb *database.RedisClient
	err := retryWithBackoff(ctx, 3, time.Second, func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, log, "redis")
	return rdb, err
}

func retryWithBackoff(ctx context.Context, attempts int, base time.Duration, fn func() error, log logger.Logger, name string) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		wait := base * time.Duration(i+1)
		log.Warn("connection attempt failed", map[string]interface{}{
			"target":  name,
			"attempt": i + 1,
			"wait":    wait.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

func serveMetrics(addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	log.Info("metrics listener up", map[string]interface{}{"address": addr})
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("metrics listener failed", nil)
	}
}
