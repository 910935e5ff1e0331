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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/grid"
	"github.com/terralens/terralens/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp()
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Lat   *float64 `json:"lat"`
				Lng   *float64 `json:"lng"`
				Place string   `json:"place"`
				Zoom  int      `json:"zoom"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			switch {
			case body.Place != "":
				snap, err := env.Orchestrator.AnalyzePlace(req.Context(), body.Place, body.Zoom)
				if err != nil {
					zap.L().Warn("analyze place failed",
						zap.String("place", body.Place), zap.Error(err))
					writeError(w, http.StatusNotFound, "place not found")
					return
				}
				writeJSON(w, http.StatusOK, snap)
			case body.Lat != nil && body.Lng != nil:
				c := model.Coordinate{Lat: *body.Lat, Lng: *body.Lng}
				snap := env.Orchestrator.AnalyzeCoordinate(req.Context(), c, body.Zoom)
				writeJSON(w, http.StatusOK, snap)
			default:
				writeError(w, http.StatusBadRequest, "lat/lng or place is required")
			}
		})

		r.Post("/api/overlay", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Overlay model.Overlay `json:"overlay"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if !body.Overlay.Valid() {
				writeError(w, http.StatusBadRequest, "unknown overlay")
				return
			}
			env.Projector.SetOverlay(body.Overlay)
			writeJSON(w, http.StatusOK, env.Projector.State())
		})

		r.Get("/api/overlay/state", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, env.Projector.State())
		})

		r.Post("/api/grid", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				BBox model.BBox `json:"bbox"`
				Rows int        `json:"rows"`
				Cols int        `json:"cols"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			batch := grid.NewBatch(env.Metrics, body.Rows, body.Cols,
				grid.WithCellTimeout(cfg.Grid.CellTimeout()),
				grid.WithCellDelay(cfg.Grid.CellDelay()),
				grid.WithWeights(env.Weights),
			)
			cells, err := batch.Run(req.Context(), body.BBox)
			if err != nil {
				zap.L().Warn("grid scan failed", zap.Error(err))
				writeError(w, http.StatusUnprocessableEntity, "grid scan failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"cells": cells})
		})

		r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
			if env.Assistant == nil {
				writeError(w, http.StatusServiceUnavailable, "assistant not configured")
				return
			}
			var body struct {
				Question string `json:"question"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			answer, err := env.Assistant.Ask(req.Context(), body.Question, env.Store.Snapshot().Region)
			if err != nil {
				zap.L().Error("chat failed", zap.Error(err))
				writeError(w, http.StatusBadGateway, "assistant unavailable")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("shutdown did not drain in time", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
