package networks

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/config"
	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubRepo struct {
	byID    map[uuid.UUID]*models.NetworkConnection
	updates []*models.NetworkConnection
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: make(map[uuid.UUID]*models.NetworkConnection)}
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, conn *models.NetworkConnection) error {
	for _, existing := range s.byID {
		if existing.UserID == conn.UserID && existing.Provider == conn.Provider {
			return fmt.Errorf(`duplicate key value violates unique constraint "network_connections_user_id_provider_key"`)
		}
	}
	conn.ID = uuid.New()
	conn.CreatedAt = time.Now()
	s.byID[conn.ID] = conn
	return nil
}

func (s *stubRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*models.NetworkConnection, error) {
	conn, ok := s.byID[id]
	if !ok || conn.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *conn
	return &copied, nil
}

func (s *stubRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.NetworkConnection, error) {
	var conns []models.NetworkConnection
	for _, conn := range s.byID {
		if conn.UserID == userID {
			conns = append(conns, *conn)
		}
	}
	return conns, nil
}

func (s *stubRepo) Update(_ context.Context, conn *models.NetworkConnection) error {
	s.updates = append(s.updates, conn)
	s.byID[conn.ID] = conn
	return nil
}

func (s *stubRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

func (s *stubRepo) ListExpiringTokens(_ context.Context, before time.Time) ([]models.NetworkConnection, error) {
	var conns []models.NetworkConnection
	for _, conn := range s.byID {
		if conn.AuthKind != enums.AuthKindOAuth || conn.Status != enums.ConnectionStatusConnected {
			continue
		}
		if conn.TokenExpiry != nil && !conn.TokenExpiry.After(before) {
			conns = append(conns, *conn)
		}
	}
	return conns, nil
}

func (s *stubRepo) ListUncheckedSince(_ context.Context, since time.Time) ([]models.NetworkConnection, error) {
	var conns []models.NetworkConnection
	for _, conn := range s.byID {
		if conn.Status == enums.ConnectionStatusDisabled {
			continue
		}
		if conn.LastCheckedAt == nil || conn.LastCheckedAt.Before(since) {
			conns = append(conns, *conn)
		}
	}
	return conns, nil
}

func mustService(t *testing.T, repo Repository, cfg config.NetworksConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Config: cfg})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func oauthConfig() config.NetworksConfig {
	return config.NetworksConfig{
		OAuthClientID:     "client-id",
		OAuthClientSecret: "client-secret",
		OAuthAuthURL:      "https://provider.test/oauth/authorize",
		OAuthTokenURL:     "https://provider.test/oauth/token",
		OAuthRedirectURL:  "https://app.test/networks/callback",
		CheckTimeout:      time.Second,
		RefreshLeeway:     time.Hour,
	}
}

func TestConnectAPIKeyStoresNormalizedProvider(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, config.NetworksConfig{})

	view, err := svc.ConnectAPIKey(context.Background(), uuid.New(), ConnectAPIKeyInput{
		NetworkType: enums.NetworkTypeAd,
		Provider:    "  PropellerAds  ",
		APIKey:      "sk-test-123",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if view.Provider != "propellerads" {
		t.Fatalf("expected normalized provider, got %q", view.Provider)
	}
	if view.Status != enums.ConnectionStatusConnected || view.AuthKind != enums.AuthKindAPIKey {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestConnectAPIKeyDuplicateProviderIsConflict(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, config.NetworksConfig{})
	userID := uuid.New()

	input := ConnectAPIKeyInput{
		NetworkType: enums.NetworkTypeCPA,
		Provider:    "maxbounty",
		APIKey:      "key",
	}
	if _, err := svc.ConnectAPIKey(context.Background(), userID, input); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	_, err := svc.ConnectAPIKey(context.Background(), userID, input)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestConnectAPIKeyValidation(t *testing.T) {
	svc := mustService(t, newStubRepo(), config.NetworksConfig{})
	userID := uuid.New()

	cases := []ConnectAPIKeyInput{
		{NetworkType: "social", Provider: "x", APIKey: "k"},
		{NetworkType: enums.NetworkTypeAd, Provider: " ", APIKey: "k"},
		{NetworkType: enums.NetworkTypeAd, Provider: "x", APIKey: " "},
	}
	for i, input := range cases {
		_, err := svc.ConnectAPIKey(context.Background(), userID, input)
		if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestBeginOAuthBuildsAuthURL(t *testing.T) {
	svc := mustService(t, newStubRepo(), oauthConfig())

	result, err := svc.BeginOAuth(context.Background(), uuid.New(), BeginOAuthInput{
		NetworkType: enums.NetworkTypeAd,
		Provider:    "clickadu",
	})
	if err != nil {
		t.Fatalf("begin oauth: %v", err)
	}
	if result.State == "" {
		t.Fatal("expected state token")
	}
	for _, fragment := range []string{
		"https://provider.test/oauth/authorize",
		"client_id=client-id",
		"state=" + result.State,
		"provider=clickadu",
	} {
		if !strings.Contains(result.AuthURL, fragment) {
			t.Fatalf("auth url missing %q: %s", fragment, result.AuthURL)
		}
	}
}

func TestBeginOAuthUnconfiguredIsStateConflict(t *testing.T) {
	svc := mustService(t, newStubRepo(), config.NetworksConfig{})
	_, err := svc.BeginOAuth(context.Background(), uuid.New(), BeginOAuthInput{
		NetworkType: enums.NetworkTypeAd,
		Provider:    "clickadu",
	})
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCheckMarksExpiredOAuthTokenAsError(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, oauthConfig())
	userID := uuid.New()

	token := "stale-token"
	expired := time.Now().Add(-time.Hour)
	conn := &models.NetworkConnection{
		UserID:      userID,
		NetworkType: enums.NetworkTypeAd,
		Provider:    "clickadu",
		Status:      enums.ConnectionStatusConnected,
		AuthKind:    enums.AuthKindOAuth,
		AccessToken: &token,
		TokenExpiry: &expired,
	}
	if err := repo.Create(context.Background(), conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	view, err := svc.Check(context.Background(), userID, conn.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if view.Status != enums.ConnectionStatusError {
		t.Fatalf("expected error status, got %s", view.Status)
	}
	if view.LastError == nil || view.LastCheckedAt == nil {
		t.Fatalf("expected check outcome recorded, got %+v", view)
	}
}

func TestCheckHealthyAPIKeyClearsError(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, oauthConfig())
	userID := uuid.New()

	key := "sk-live"
	prevErr := "boom"
	conn := &models.NetworkConnection{
		UserID:      userID,
		NetworkType: enums.NetworkTypeCPA,
		Provider:    "maxbounty",
		Status:      enums.ConnectionStatusError,
		AuthKind:    enums.AuthKindAPIKey,
		APIKey:      &key,
		LastError:   &prevErr,
	}
	if err := repo.Create(context.Background(), conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	view, err := svc.Check(context.Background(), userID, conn.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if view.Status != enums.ConnectionStatusConnected || view.LastError != nil {
		t.Fatalf("expected recovered connection, got %+v", view)
	}
}

func TestCheckDisabledIsStateConflict(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, oauthConfig())
	userID := uuid.New()

	conn := &models.NetworkConnection{
		UserID:      userID,
		NetworkType: enums.NetworkTypeAd,
		Provider:    "clickadu",
		Status:      enums.ConnectionStatusDisabled,
		AuthKind:    enums.AuthKindAPIKey,
	}
	if err := repo.Create(context.Background(), conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Check(context.Background(), userID, conn.ID)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, config.NetworksConfig{})
	owner := uuid.New()

	key := "k"
	conn := &models.NetworkConnection{
		UserID:      owner,
		NetworkType: enums.NetworkTypeAd,
		Provider:    "clickadu",
		AuthKind:    enums.AuthKindAPIKey,
		APIKey:      &key,
	}
	if err := repo.Create(context.Background(), conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := svc.Delete(context.Background(), uuid.New(), conn.ID)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, conn.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestCheckStaleConnectionsSweep(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, oauthConfig())
	userID := uuid.New()

	key := "sk"
	stale := &models.NetworkConnection{
		UserID:      userID,
		NetworkType: enums.NetworkTypeAd,
		Provider:    "clickadu",
		Status:      enums.ConnectionStatusConnected,
		AuthKind:    enums.AuthKindAPIKey,
		APIKey:      &key,
	}
	if err := repo.Create(context.Background(), stale); err != nil {
		t.Fatalf("seed: %v", err)
	}

	checked, err := svc.CheckStaleConnections(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if checked != 1 {
		t.Fatalf("expected 1 checked connection, got %d", checked)
	}
	if stored := repo.byID[stale.ID]; stored.LastCheckedAt == nil {
		t.Fatal("expected last_checked_at recorded")
	}
}
