package cron

import (
	"context"
	"fmt"

	"github.com/danverhoeven/adledger-backend/pkg/logger"
)

const tokenRefreshJobName = "network-token-refresh"

type tokenRefresher interface {
	RefreshExpiringTokens(ctx context.Context) (int, error)
}

// TokenRefreshJobParams configure the OAuth token renewal job.
type TokenRefreshJobParams struct {
	Logger   *logger.Logger
	Networks tokenRefresher
}

type tokenRefreshJob struct {
	logg     *logger.Logger
	networks tokenRefresher
}

// NewTokenRefreshJob constructs the job that renews OAuth tokens before they
// lapse.
func NewTokenRefreshJob(params TokenRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Networks == nil {
		return nil, fmt.Errorf("network service required")
	}
	return &tokenRefreshJob{
		logg:     params.Logger,
		networks: params.Networks,
	}, nil
}

func (j *tokenRefreshJob) Name() string { return tokenRefreshJobName }

func (j *tokenRefreshJob) Run(ctx context.Context) error {
	refreshed, err := j.networks.RefreshExpiringTokens(ctx)
	ctx = j.logg.WithField(ctx, "refreshed", refreshed)
	if err != nil {
		// Partial progress still counts; the combined error carries every
		// connection that could not be renewed.
		return fmt.Errorf("refresh expiring tokens (renewed %d): %w", refreshed, err)
	}
	j.logg.Info(ctx, "token refresh sweep complete")
	return nil
}
