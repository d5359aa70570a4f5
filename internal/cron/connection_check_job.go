package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/logger"
)

const (
	connectionCheckJobName = "network-connection-check"

	// Connections probed within this window are considered fresh and skipped.
	defaultStaleAfter = 24 * time.Hour
)

type connectionChecker interface {
	CheckStaleConnections(ctx context.Context, staleAfter time.Duration) (int, error)
}

// ConnectionCheckJobParams configure the stale connection health sweep.
type ConnectionCheckJobParams struct {
	Logger     *logger.Logger
	Networks   connectionChecker
	StaleAfter time.Duration
}

type connectionCheckJob struct {
	logg       *logger.Logger
	networks   connectionChecker
	staleAfter time.Duration
}

// NewConnectionCheckJob constructs the job that re-verifies connections that
// have not been probed recently.
func NewConnectionCheckJob(params ConnectionCheckJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Networks == nil {
		return nil, fmt.Errorf("network service required")
	}
	staleAfter := params.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &connectionCheckJob{
		logg:       params.Logger,
		networks:   params.Networks,
		staleAfter: staleAfter,
	}, nil
}

func (j *connectionCheckJob) Name() string { return connectionCheckJobName }

func (j *connectionCheckJob) Run(ctx context.Context) error {
	checked, err := j.networks.CheckStaleConnections(ctx, j.staleAfter)
	ctx = j.logg.WithField(ctx, "checked", checked)
	if err != nil {
		return fmt.Errorf("check stale connections (checked %d): %w", checked, err)
	}
	j.logg.Info(ctx, "connection health sweep complete")
	return nil
}
