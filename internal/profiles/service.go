// Package profiles is the air unit side of the TX profile API: it validates
// replacement tables, persists them and triggers the apply hook.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"gsweb/internal/logger"
	"gsweb/internal/metrics"
	"gsweb/internal/models"
	"gsweb/internal/partition"
	"gsweb/internal/store"
)

// ErrInvalidPartition wraps structural problems in a submitted table.
var ErrInvalidPartition = errors.New("invalid profile partition")

// Service owns the profile store.
type Service struct {
	store   store.Store
	axis    partition.Axis
	logger  logger.Logger
	metrics *metrics.Collector

	applyCommand string
	applyTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records segment counts and save results on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithApplyCommand runs cmd through sh after every successful save.
func WithApplyCommand(cmd string, timeout time.Duration) Option {
	return func(s *Service) {
		s.applyCommand = cmd
		s.applyTimeout = timeout
	}
}

// NewService creates a profile service.
func NewService(st store.Store, axis partition.Axis, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:        st,
		axis:         axis,
		logger:       log,
		applyTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Axis returns the axis tables are checked against.
func (s *Service) Axis() partition.Axis {
	return s.axis
}

// Get returns the stored table as is. Repairing it is the client's job.
func (s *Service) Get(ctx context.Context) ([]models.TxProfile, error) {
	profiles, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	s.metrics.SetSegments(len(profiles))
	return profiles, nil
}

// Replace validates profiles and atomically replaces the stored table.
func (s *Service) Replace(ctx context.Context, profiles []models.TxProfile) error {
	if err := models.ValidateAll(profiles); err != nil {
		return err
	}
	if err := s.axis.Check(partition.Partition(profiles)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPartition, err)
	}

	err := s.store.Save(ctx, profiles)
	s.metrics.ObserveSave(err)
	if err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	s.metrics.SetSegments(len(profiles))
	s.logger.Infof("Saved %d TX profiles", len(profiles))

	if err := s.apply(ctx); err != nil {
		// The table is persisted; the daemon picks it up on its next start.
		s.logger.Warnf("Apply command failed: %v", err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context) error {
	if s.applyCommand == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.applyTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", s.applyCommand)
	// Children of the shell may hold the output pipe after it is killed.
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%q: %w: %s", s.applyCommand, err, out)
	}
	s.logger.Debugf("Apply command %q finished: %s", s.applyCommand, out)
	return nil
}
