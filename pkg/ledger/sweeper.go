package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper runs SweepExpired on a cron schedule so balance reads rarely
// find credits left to reclassify.
type Sweeper struct {
	service *Service
	cron    *cron.Cron
	timeout time.Duration
}

func NewSweeper(service *Service, schedule string, timeout time.Duration) (*Sweeper, error) {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	s := &Sweeper{
		service: service,
		cron:    cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running sweep to finish or for ctx
// to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	swept, err := s.service.SweepExpired(ctx)
	log := logrus.WithFields(logrus.Fields{
		"users":    swept,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		log.WithError(err).Error("Sweeper: Expiry sweep failed")
		return
	}
	log.Info("Sweeper: Expiry sweep finished")
}
