package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"SignalDesk/internal/notifier"
	"SignalDesk/internal/pipeline"
)

// Scheduler triggers pipeline runs on cron schedules and answers chat commands.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *pipeline.Runner
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, runner *pipeline.Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Ctx:    ctx,
	}
}

// RegisterAll registers the refresh and alert tasks. An empty spec disables
// the corresponding task.
func (s *Scheduler) RegisterAll(refreshCron, alertCron string) error {
	if refreshCron != "" {
		if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
		log.Printf("[INFO] refresh scheduled: %s", refreshCron)
	}
	if alertCron != "" {
		if _, err := s.Cron.AddFunc(alertCron, s.alertTask); err != nil {
			return fmt.Errorf("register alert task: %w", err)
		}
		log.Printf("[INFO] signal alert scheduled: %s", alertCron)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running scheduled refresh")
	if _, err := s.Runner.Run(s.Ctx); err != nil {
		log.Printf("[ERROR] scheduled refresh: %v", err)
	}
}

func (s *Scheduler) alertTask() {
	log.Println("[INFO] running scheduled signal alert")
	res, err := s.Runner.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scheduled alert run: %v", err)
		return
	}
	if err := s.Runner.SendSignal(s.Ctx, res); err != nil {
		log.Printf("[ERROR] scheduled alert send: %v", err)
	}
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) notifier.Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Reply{Text: notifier.FormatHelp()}
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/signal":
		res, err := s.Runner.Run(ctx)
		if err != nil {
			return notifier.Reply{Text: "❌ Run failed: " + err.Error()}
		}
		return notifier.Reply{Text: notifier.FormatRunSummary(res)}
	case "/csv":
		res, err := s.Runner.Run(ctx)
		if err != nil {
			return notifier.Reply{Text: "❌ Run failed: " + err.Error()}
		}
		if res.CSVPath == "" {
			return notifier.Reply{Text: "No snapshot file is configured."}
		}
		return notifier.Reply{Document: res.CSVPath}
	default:
		return notifier.Reply{Text: notifier.FormatHelp()}
	}
}
