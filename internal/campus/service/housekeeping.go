package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// DefaultHousekeepingSchedule runs the sweep every quarter hour.
const DefaultHousekeepingSchedule = "@every 15m"

// HousekeepingService periodically purges lapsed SMS codes and runs a
// read-only reconciliation scan so divergences show up in the logs.
type HousekeepingService struct {
	Store        store.Store
	Verification *VerificationService
	Logger       *slog.Logger
	Schedule     string
	Now          func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// HousekeepingReport is what one sweep did.
type HousekeepingReport struct {
	PurgedCodes int64
	Divergences int
}

// NewHousekeepingService creates a housekeeping service. An empty schedule
// means DefaultHousekeepingSchedule.
func NewHousekeepingService(st store.Store, v *VerificationService, logger *slog.Logger, schedule string) *HousekeepingService {
	if schedule == "" {
		schedule = DefaultHousekeepingSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HousekeepingService{
		Store:        st,
		Verification: v,
		Logger:       logger,
		Schedule:     schedule,
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Debug("cron: "+msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error("cron: "+msg, append(kv, "error", err)...)
}

// Start schedules the sweep. It does not block. An invalid schedule is
// returned as an error.
func (s *HousekeepingService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	cl := cronLogger{l: s.Logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(s.Schedule, func() {
		_, _ = s.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c

	s.Logger.Info("housekeeping service started", "schedule", s.Schedule)
	return nil
}

// Stop unschedules the sweep and waits for a running one to finish.
func (s *HousekeepingService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.Logger.Info("housekeeping service stopped")
}

// RunOnce performs one sweep. Each step is independent: a failing step is
// logged and the next one still runs. The first error is returned.
func (s *HousekeepingService) RunOnce(ctx context.Context) (HousekeepingReport, error) {
	ctx = slogx.WithContext(ctx, s.Logger.With("component", "housekeeping"))
	log := slogx.FromContext(ctx)

	var (
		rep   HousekeepingReport
		first error
	)

	n, err := s.Store.Identities().PurgeExpiredSMSCodes(ctx, s.now())
	if err != nil {
		log.Error("failed to purge expired sms codes", "error", err)
		first = err
	} else {
		rep.PurgedCodes = n
	}

	if s.Verification != nil {
		scan, err := s.Verification.Scan(ctx)
		if err != nil {
			log.Error("reconciliation scan failed", "error", err)
			if first == nil {
				first = err
			}
		} else {
			rep.Divergences = len(scan.Divergences)
			for _, d := range scan.Divergences {
				log.Warn("approved request diverged from identities",
					"request_id", d.RequestID, "reason", d.Reason, "identity_id", d.IdentityID)
			}
		}
	}

	log.Info("housekeeping completed", "purged_codes", rep.PurgedCodes, "divergences", rep.Divergences)
	return rep, first
}
