// Package dashboard serves the single-page UI, the JSON API, the chart,
// the websocket feed and the metrics endpoint.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"SignalDesk/internal/config"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
	"SignalDesk/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"num": func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
	"pct": func(v float64) string { return decimal.NewFromFloat(v*100).StringFixed(1) + "%" },
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	runner   *pipeline.Runner
	hub      *Hub
	engine   *gin.Engine
	gatherer prometheus.Gatherer
	canSend  bool
}

// NewServer builds the gin engine and subscribes the websocket hub to runs.
func NewServer(cfg *config.Config, runner *pipeline.Runner, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		hub:      NewHub(m),
		engine:   gin.Default(),
		gatherer: gatherer,
		canSend:  cfg.TelegramConfigured(),
	}
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	s.engine.SetHTMLTemplate(tmpl)
	runner.OnRun(s.hub.Publish)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.index)
	s.engine.POST("/actions/send-signal", s.sendSignal)
	s.engine.POST("/actions/send-csv", s.sendCSV)
	s.engine.GET("/chart.svg", s.chart)
	s.engine.GET("/download/csv", s.downloadCSV)

	s.engine.GET("/api/run", s.getRun)
	s.engine.GET("/api/health", s.getHealth)

	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start serves on cfg.Server.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] dashboard listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}
	log.Println("[INFO] dashboard stopped")
	return nil
}

func (s *Server) newPage() *page {
	start, end, _ := s.cfg.DateRange(time.Now())
	return &page{
		Symbol:  s.cfg.Symbol,
		Start:   start.Format(config.DateLayout),
		End:     end.Format(config.DateLayout),
		CanSend: s.canSend,
		ChartTS: time.Now().UnixNano(),
	}
}

// runForPage re-runs the pipeline. On failure it renders the error page and
// returns nil.
func (s *Server) runForPage(c *gin.Context, p *page) *model.RunResult {
	res, err := s.runner.Run(c.Request.Context())
	if err != nil {
		p.Error = err.Error()
		c.HTML(http.StatusInternalServerError, "index", p)
		return nil
	}
	p.Run = NewRunView(res)
	return res
}

func (s *Server) index(c *gin.Context) {
	p := s.newPage()
	if s.runForPage(c, p) == nil {
		return
	}
	c.HTML(http.StatusOK, "index", p)
}

func (s *Server) sendSignal(c *gin.Context) {
	p := s.newPage()
	res := s.runForPage(c, p)
	if res == nil {
		return
	}
	if err := s.runner.SendSignal(c.Request.Context(), res); err != nil {
		p.Flash = "❌ Failed to send Telegram alert: " + err.Error()
		c.HTML(http.StatusBadGateway, "index", p)
		return
	}
	p.Flash, p.FlashOK = "✅ Telegram alert sent!", true
	c.HTML(http.StatusOK, "index", p)
}

func (s *Server) sendCSV(c *gin.Context) {
	p := s.newPage()
	res := s.runForPage(c, p)
	if res == nil {
		return
	}
	if err := s.runner.SendCSV(c.Request.Context(), res); err != nil {
		p.Flash = "❌ Failed to send CSV file: " + err.Error()
		c.HTML(http.StatusBadGateway, "index", p)
		return
	}
	p.Flash, p.FlashOK = "✅ CSV file sent to Telegram!", true
	c.HTML(http.StatusOK, "index", p)
}

func (s *Server) chart(c *gin.Context) {
	last := s.runner.Last()
	if last == nil {
		c.String(http.StatusNotFound, "no run yet")
		return
	}
	var buf bytes.Buffer
	if err := RenderChart(&buf, last.Table); err != nil {
		log.Printf("[ERROR] render chart: %v", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (s *Server) downloadCSV(c *gin.Context) {
	path := s.cfg.Output.CSVPath
	if last := s.runner.Last(); last != nil && last.CSVPath != "" {
		path = last.CSVPath
	}
	if _, err := os.Stat(path); err != nil {
		c.String(http.StatusNotFound, "snapshot not available")
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) getRun(c *gin.Context) {
	if c.Query("refresh") == "1" {
		res, err := s.runner.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, NewRunView(res))
		return
	}
	last := s.runner.Last()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run yet"})
		return
	}
	c.JSON(http.StatusOK, NewRunView(last))
}

func (s *Server) getHealth(c *gin.Context) {
	h := s.runner.Health().Snapshot()
	status := "ok"
	if h.RunsTotal > 0 && !h.LastRunOK {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"symbol": s.cfg.Symbol,
		"health": h,
	})
}
