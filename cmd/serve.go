package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/aggregate"
	"github.com/hexatlas/hexatlas/internal/model"
	"github.com/hexatlas/hexatlas/internal/render"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the aggregation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnvironment()
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(requestID)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/regions", func(w http.ResponseWriter, _ *http.Request) {
			writeResponse(w, http.StatusOK, model.Regions())
		})

		r.Get("/api/indicators", func(w http.ResponseWriter, _ *http.Request) {
			type entry struct {
				Key   string `json:"key"`
				Label string `json:"label"`
			}
			keys := model.IndicatorKeys()
			out := make([]entry, 0, len(keys))
			for _, k := range keys {
				out = append(out, entry{Key: k, Label: model.IndicatorLabel(k)})
			}
			writeResponse(w, http.StatusOK, out)
		})

		r.Post("/api/aggregate", handleAggregate(env))

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port()),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func port() int {
	if servePort != 0 {
		return servePort
	}
	return cfg.Server.Port
}

// aggregateRequest is the POST /api/aggregate body.
type aggregateRequest struct {
	Region         string   `json:"region"`
	Indicators     []string `json:"indicators"`
	Resolution     int      `json:"resolution"`
	Date           string   `json:"date"`
	ForecastOffset int      `json:"forecast_offset"`
	ColorBy        string   `json:"color_by"`
	WithBoundaries bool     `json:"with_boundaries"`
}

func handleAggregate(env *environment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req aggregateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		region, err := model.RegionByAbbr(req.Region)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		indicators := req.Indicators
		if len(indicators) == 0 {
			indicators = model.IndicatorKeys()
		}

		resolution := req.Resolution
		if resolution == 0 {
			resolution = 6
		}

		var date time.Time
		if req.Date != "" {
			date, err = time.Parse("2006-01-02", req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
		}

		if colorBy := r.URL.Query().Get("color_by"); colorBy != "" {
			req.ColorBy = colorBy
		}

		table, err := env.Engine.Aggregate(r.Context(), aggregate.Request{
			Indicators:     indicators,
			Region:         region,
			Resolution:     resolution,
			HistoricalDate: date,
			ForecastOffset: req.ForecastOffset,
		})
		if err != nil {
			zap.L().Error("aggregation failed",
				zap.String("region", region.Abbr),
				zap.Error(err),
			)
			writeError(w, http.StatusBadGateway, "aggregation failed")
			return
		}

		if req.WithBoundaries {
			if err := render.WithBoundaries(table); err != nil {
				writeError(w, http.StatusInternalServerError, "boundary rendering failed")
				return
			}
		}
		if req.ColorBy != "" {
			if err := render.Colorize(table, req.ColorBy); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		writeResponse(w, http.StatusOK, table)
	}
}

// requestID tags every request with a fresh identifier for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func writeResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
