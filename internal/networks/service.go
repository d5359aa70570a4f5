package networks

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/config"
	"github.com/danverhoeven/adledger-backend/pkg/db"
	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Verifier probes a provider to confirm stored credentials still work.
type Verifier interface {
	Verify(ctx context.Context, conn *models.NetworkConnection) error
}

// Service manages third-party network connections.
type Service interface {
	ConnectAPIKey(ctx context.Context, userID uuid.UUID, input ConnectAPIKeyInput) (*ConnectionView, error)
	BeginOAuth(ctx context.Context, userID uuid.UUID, input BeginOAuthInput) (*BeginOAuthResult, error)
	CompleteOAuth(ctx context.Context, userID uuid.UUID, input CompleteOAuthInput) (*ConnectionView, error)
	List(ctx context.Context, userID uuid.UUID) ([]ConnectionView, error)
	Check(ctx context.Context, userID, id uuid.UUID) (*ConnectionView, error)
	Disable(ctx context.Context, userID, id uuid.UUID) (*ConnectionView, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Maintenance entry points used by the cron worker.
	RefreshExpiringTokens(ctx context.Context) (int, error)
	CheckStaleConnections(ctx context.Context, staleAfter time.Duration) (int, error)
}

type service struct {
	repo     Repository
	oauth    *oauthExchanger
	verifier Verifier
	cfg      config.NetworksConfig
	clock    func() time.Time
}

// ServiceParams bundles the dependencies required to build a network service.
type ServiceParams struct {
	Repo     Repository
	Verifier Verifier
	Config   config.NetworksConfig
	Clock    func() time.Time
}

// NewService constructs a network connection service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("connection repository is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:     params.Repo,
		oauth:    newOAuthExchanger(params.Config),
		verifier: params.Verifier,
		cfg:      params.Config,
		clock:    clock,
	}, nil
}

func (s *service) ConnectAPIKey(ctx context.Context, userID uuid.UUID, input ConnectAPIKeyInput) (*ConnectionView, error) {
	if err := validateTarget(userID, input.NetworkType, input.Provider); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.APIKey) == "" {
		return nil, errors.New(errors.CodeValidation, "api key is required")
	}

	key := strings.TrimSpace(input.APIKey)
	conn := &models.NetworkConnection{
		UserID:      userID,
		NetworkType: input.NetworkType,
		Provider:    normalizeProvider(input.Provider),
		Status:      enums.ConnectionStatusConnected,
		AuthKind:    enums.AuthKindAPIKey,
		APIKey:      &key,
	}
	if err := s.repo.Create(ctx, conn); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "provider is already connected")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "create connection")
	}
	return viewOf(conn), nil
}

func (s *service) BeginOAuth(ctx context.Context, userID uuid.UUID, input BeginOAuthInput) (*BeginOAuthResult, error) {
	if err := validateTarget(userID, input.NetworkType, input.Provider); err != nil {
		return nil, err
	}
	return s.oauth.begin(normalizeProvider(input.Provider))
}

func (s *service) CompleteOAuth(ctx context.Context, userID uuid.UUID, input CompleteOAuthInput) (*ConnectionView, error) {
	if err := validateTarget(userID, input.NetworkType, input.Provider); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Code) == "" {
		return nil, errors.New(errors.CodeValidation, "authorization code is required")
	}

	token, err := s.oauth.exchange(ctx, input.Code)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "exchange authorization code")
	}

	conn := &models.NetworkConnection{
		UserID:      userID,
		NetworkType: input.NetworkType,
		Provider:    normalizeProvider(input.Provider),
		Status:      enums.ConnectionStatusConnected,
		AuthKind:    enums.AuthKindOAuth,
		AccessToken: &token.AccessToken,
	}
	if token.RefreshToken != "" {
		conn.RefreshToken = &token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		conn.TokenExpiry = &expiry
	}

	if err := s.repo.Create(ctx, conn); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "provider is already connected")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "create connection")
	}
	return viewOf(conn), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ConnectionView, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "user id is required")
	}
	conns, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list connections")
	}
	views := make([]ConnectionView, 0, len(conns))
	for i := range conns {
		views = append(views, *viewOf(&conns[i]))
	}
	return views, nil
}

// Check probes the provider and records the outcome on the connection row.
func (s *service) Check(ctx context.Context, userID, id uuid.UUID) (*ConnectionView, error) {
	conn, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if conn.Status == enums.ConnectionStatusDisabled {
		return nil, errors.New(errors.CodeStateConflict, "connection is disabled")
	}

	checkCtx := ctx
	if s.cfg.CheckTimeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.cfg.CheckTimeout)
		defer cancel()
	}

	now := s.clock().UTC()
	conn.LastCheckedAt = &now
	if verifyErr := s.verify(checkCtx, conn); verifyErr != nil {
		msg := verifyErr.Error()
		conn.Status = enums.ConnectionStatusError
		conn.LastError = &msg
	} else {
		conn.Status = enums.ConnectionStatusConnected
		conn.LastError = nil
	}

	if err := s.repo.Update(ctx, conn); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "record check result")
	}
	return viewOf(conn), nil
}

func (s *service) Disable(ctx context.Context, userID, id uuid.UUID) (*ConnectionView, error) {
	conn, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if conn.Status == enums.ConnectionStatusDisabled {
		return nil, errors.New(errors.CodeStateConflict, "connection is already disabled")
	}
	conn.Status = enums.ConnectionStatusDisabled
	if err := s.repo.Update(ctx, conn); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "disable connection")
	}
	return viewOf(conn), nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.find(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete connection")
	}
	return nil
}

// RefreshExpiringTokens renews OAuth access tokens that expire within the
// configured leeway. Failures flip the connection into the error state rather
// than aborting the sweep; the count of successful renewals is returned along
// with the combined error.
func (s *service) RefreshExpiringTokens(ctx context.Context) (int, error) {
	now := s.clock().UTC()
	conns, err := s.repo.ListExpiringTokens(ctx, now.Add(s.cfg.RefreshLeeway))
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "list expiring tokens")
	}

	var refreshed int
	var sweepErr error
	for i := range conns {
		conn := &conns[i]
		if conn.RefreshToken == nil || *conn.RefreshToken == "" {
			continue
		}
		var expiry time.Time
		if conn.TokenExpiry != nil {
			expiry = *conn.TokenExpiry
		}
		token, refreshErr := s.oauth.refresh(ctx, *conn.RefreshToken, expiry)
		if refreshErr != nil {
			msg := refreshErr.Error()
			conn.Status = enums.ConnectionStatusError
			conn.LastError = &msg
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("refresh %s for user %s: %w", conn.Provider, conn.UserID, refreshErr))
		} else {
			conn.AccessToken = &token.AccessToken
			if token.RefreshToken != "" {
				conn.RefreshToken = &token.RefreshToken
			}
			if !token.Expiry.IsZero() {
				newExpiry := token.Expiry.UTC()
				conn.TokenExpiry = &newExpiry
			}
			conn.Status = enums.ConnectionStatusConnected
			conn.LastError = nil
			refreshed++
		}
		if updateErr := s.repo.Update(ctx, conn); updateErr != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("persist %s: %w", conn.ID, updateErr))
		}
	}
	return refreshed, sweepErr
}

// CheckStaleConnections re-verifies connections that have not been probed
// within staleAfter and records the outcome on each row.
func (s *service) CheckStaleConnections(ctx context.Context, staleAfter time.Duration) (int, error) {
	now := s.clock().UTC()
	conns, err := s.repo.ListUncheckedSince(ctx, now.Add(-staleAfter))
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "list stale connections")
	}

	var checked int
	var sweepErr error
	for i := range conns {
		conn := &conns[i]
		checkedAt := s.clock().UTC()
		conn.LastCheckedAt = &checkedAt
		if verifyErr := s.verify(ctx, conn); verifyErr != nil {
			msg := verifyErr.Error()
			conn.Status = enums.ConnectionStatusError
			conn.LastError = &msg
		} else {
			conn.Status = enums.ConnectionStatusConnected
			conn.LastError = nil
		}
		if updateErr := s.repo.Update(ctx, conn); updateErr != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("persist %s: %w", conn.ID, updateErr))
			continue
		}
		checked++
	}
	return checked, sweepErr
}

func (s *service) verify(ctx context.Context, conn *models.NetworkConnection) error {
	if s.verifier != nil {
		return s.verifier.Verify(ctx, conn)
	}
	// Without a provider probe, expiry is the only health signal available.
	switch conn.AuthKind {
	case enums.AuthKindOAuth:
		if conn.AccessToken == nil || *conn.AccessToken == "" {
			return fmt.Errorf("missing access token")
		}
		if conn.TokenExpiry != nil && conn.TokenExpiry.Before(s.clock()) {
			return fmt.Errorf("access token expired at %s", conn.TokenExpiry.Format(time.RFC3339))
		}
	case enums.AuthKindAPIKey:
		if conn.APIKey == nil || *conn.APIKey == "" {
			return fmt.Errorf("missing api key")
		}
	}
	return nil
}

func (s *service) find(ctx context.Context, userID, id uuid.UUID) (*models.NetworkConnection, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "user id is required")
	}
	if id == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "connection id is required")
	}
	conn, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "connection not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "load connection")
	}
	return conn, nil
}

func validateTarget(userID uuid.UUID, networkType enums.NetworkType, provider string) error {
	if userID == uuid.Nil {
		return errors.New(errors.CodeUnauthorized, "user id is required")
	}
	if !networkType.IsValid() {
		return errors.New(errors.CodeValidation, "invalid network type").WithDetails(string(networkType))
	}
	if strings.TrimSpace(provider) == "" {
		return errors.New(errors.CodeValidation, "provider is required")
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func viewOf(conn *models.NetworkConnection) *ConnectionView {
	return &ConnectionView{
		ID:            conn.ID,
		NetworkType:   conn.NetworkType,
		Provider:      conn.Provider,
		Status:        conn.Status,
		AuthKind:      conn.AuthKind,
		TokenExpiry:   conn.TokenExpiry,
		LastCheckedAt: conn.LastCheckedAt,
		LastError:     conn.LastError,
		CreatedAt:     conn.CreatedAt,
	}
}
