package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/pipeline"
	"SignalDesk/internal/recorder"
)

type nopNotifier struct{ texts int }

func (n *nopNotifier) SendText(context.Context, string) error { n.texts++; return nil }
func (n *nopNotifier) SendFile(context.Context, string) error { return nil }

func newScheduler(t *testing.T) (*Scheduler, *collector.MockFetcher, *nopNotifier) {
	t.Helper()
	cfg := &config.Config{Symbol: "TEST", StartDate: "2024-01-01", EndDate: "2024-06-30"}
	f := &collector.MockFetcher{
		Price:     10,
		DailyData: collector.GenerateTrend(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100, -0.01, 40),
	}
	n := &nopNotifier{}
	path := filepath.Join(t.TempDir(), "s.csv")
	r := pipeline.NewRunner(cfg, collector.NewCollector(f, "TEST"), recorder.NewCSVRecorder(path), n,
		metrics.NewMetrics(prometheus.NewRegistry()), metrics.NewHealthStatus("mock"))
	return NewScheduler(context.Background(), r), f, n
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newScheduler(t)
	if err := s.RegisterAll("0 30 18 * * 1-5", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected 1 entry, got %d", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("", "0 0 9 * * *"); err != nil {
		t.Fatalf("register alert: %v", err)
	}
	if len(s.Cron.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("not a cron", ""); err == nil {
		t.Error("expected error for bad spec")
	}
}

func TestHandleCommand(t *testing.T) {
	s, f, _ := newScheduler(t)

	reply := s.HandleCommand(context.Background(), "/signal")
	if !strings.Contains(reply.Text, "*TEST* - Signal: *📉 SELL*") {
		t.Errorf("/signal reply: %q", reply.Text)
	}

	reply = s.HandleCommand(context.Background(), "/csv@SignalDeskBot")
	if reply.Document == "" || !strings.HasSuffix(reply.Document, "s.csv") {
		t.Errorf("/csv reply: %+v", reply)
	}

	for _, cmd := range []string{"", "hello", "/unknown"} {
		if r := s.HandleCommand(context.Background(), cmd); !strings.Contains(r.Text, "/signal") {
			t.Errorf("%q: expected help, got %q", cmd, r.Text)
		}
	}

	f.BarsErr = errors.New("down")
	if r := s.HandleCommand(context.Background(), "/signal"); !strings.Contains(r.Text, "Run failed") {
		t.Errorf("failed run reply: %q", r.Text)
	}
}

func TestAlertTask(t *testing.T) {
	s, _, n := newScheduler(t)
	s.alertTask()
	if n.texts != 1 {
		t.Errorf("expected one alert, got %d", n.texts)
	}
	s.RunNow()
	if s.Runner.Last() == nil {
		t.Error("refresh should record a result")
	}
}
