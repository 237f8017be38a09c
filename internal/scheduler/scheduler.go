package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/config"
	"github.com/bsglab/workshoptrack/internal/repository/mongodb"
	"github.com/bsglab/workshoptrack/internal/repository/sheets"
	"github.com/bsglab/workshoptrack/internal/service/reporting"
	"github.com/bsglab/workshoptrack/pkg/clients/telegram"
)

// Scheduler runs the end-of-day summary job: aggregate, archive to MongoDB,
// export to the spreadsheet, notify the supervisor chat.
type Scheduler struct {
	cron         *cron.Cron
	cfg          config.ReportingConfig
	reportingSvc *reporting.Service
	archive      mongodb.Repository
	exporter     sheets.Exporter
	notifier     telegram.Client
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. archive, exporter and
// notifier may each be nil; the job skips the missing sinks.
func NewScheduler(cfg config.ReportingConfig, reportingSvc *reporting.Service, archive mongodb.Repository, exporter sheets.Exporter, notifier telegram.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		cfg:          cfg,
		reportingSvc: reportingSvc,
		archive:      archive,
		exporter:     exporter,
		notifier:     notifier,
		logger:       logger,
	}
}

// Start registers the daily job and launches the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	day := time.Now()
	summary, err := s.reportingSvc.BuildDailySummary(ctx, day)
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}

	// Each sink fails independently; a broken archive must not silence the
	// supervisor notification.
	if s.archive != nil {
		if err := s.archive.SaveDailySummary(ctx, summary); err != nil {
			s.logger.Error("failed to archive daily summary", zap.Error(err))
		}
	}

	if s.exporter != nil {
		date := summary.Date.Format("2006-01-02")
		for _, st := range summary.Stations {
			row := []interface{}{date, st.Station, st.Created, st.Updated}
			if err := s.exporter.AppendActivityRow(ctx, row); err != nil {
				s.logger.Error("failed to export activity row",
					zap.String("station", st.Station), zap.Error(err))
			}
		}
	}

	if s.notifier != nil && s.cfg.SupervisorChatID != 0 {
		text := s.reportingSvc.FormatSummary(summary)
		if _, err := s.notifier.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: s.cfg.SupervisorChatID,
			Text:   text,
		}); err != nil {
			s.logger.Error("failed to send daily summary", zap.Error(err))
		}
	}

	s.logger.Info("daily summary completed",
		zap.Int("stations", len(summary.Stations)),
		zap.Int("outsourcing_sent", summary.OutsourcingSent),
		zap.Int("outsourcing_received", summary.OutsourcingReceived))
}
