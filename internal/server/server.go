package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// Runner executes diagnostic requests and persists their reports.
type Runner interface {
	Run(ctx context.Context, req protocol.Request) (protocol.Report, error)
	SaveReport(report protocol.Report, path string) error
}

type Config struct {
	ListenAddr   string
	ReportsDir   string
	HistorySize  int
	SweepTimeout time.Duration
}

type Server struct {
	Config  Config
	Runner  Runner
	History *ReportHistory
	Router  *http.ServeMux

	log *zap.Logger
}

func New(cfg Config, runner Runner, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		Config:  cfg,
		Runner:  runner,
		History: NewReportHistory(cfg.HistorySize),
		Router:  http.NewServeMux(),
		log:     log.Named("server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc("GET /api/v1/info", s.handleInfo)
	s.Router.HandleFunc("POST /api/v1/reachability", s.handleReachability)
	s.Router.HandleFunc("POST /api/v1/ports", s.handlePorts)
	s.Router.HandleFunc("GET /api/v1/services", s.handleServices)
	s.Router.HandleFunc("GET /api/v1/reports/{id}", s.handleGetReport)
	s.Router.HandleFunc("POST /api/v1/reports/{id}/save", s.handleSaveReport)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Config.ListenAddr,
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.Config.SweepTimeout + 40*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.Config.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
