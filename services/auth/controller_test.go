package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/trakt"
)

// --- Mock implementations ---

type exchangeResult struct {
	token *trakt.Token
	err   error
}

type mockDeviceAPI struct {
	deviceCode    *trakt.DeviceCode
	deviceCodeErr error

	exchanges     []exchangeResult
	exchangeCalls int

	refreshToken *trakt.Token
	refreshErr   error
	refreshCalls int

	user    *trakt.User
	userErr error
}

func (m *mockDeviceAPI) DeviceCode(_ context.Context) (*trakt.DeviceCode, error) {
	return m.deviceCode, m.deviceCodeErr
}

func (m *mockDeviceAPI) ExchangeDeviceCode(_ context.Context, _ string) (*trakt.Token, error) {
	i := m.exchangeCalls
	m.exchangeCalls++
	if i >= len(m.exchanges) {
		return nil, trakt.ErrAuthorizationPending
	}
	return m.exchanges[i].token, m.exchanges[i].err
}

func (m *mockDeviceAPI) RefreshToken(_ context.Context, _ string) (*trakt.Token, error) {
	m.refreshCalls++
	return m.refreshToken, m.refreshErr
}

func (m *mockDeviceAPI) CurrentUser(_ context.Context, _ string) (*trakt.User, error) {
	return m.user, m.userErr
}

type tokenUpdate struct {
	accessToken  string
	refreshToken string
	expiresIn    int64
	createdAt    int64
}

type mockSessionStore struct {
	sess    *models.Session
	getErr  error
	saved   *models.Session
	saveErr error
	updates []tokenUpdate
	deleted int
}

func (m *mockSessionStore) Get(_ context.Context) (*models.Session, error) {
	return m.sess, m.getErr
}

func (m *mockSessionStore) Save(_ context.Context, s *models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = s
	m.sess = s
	return nil
}

func (m *mockSessionStore) UpdateTokens(_ context.Context, accessToken, refreshToken string, expiresIn, createdAt int64) error {
	m.updates = append(m.updates, tokenUpdate{accessToken, refreshToken, expiresIn, createdAt})
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context) error {
	m.deleted++
	m.sess = nil
	return nil
}

// --- Test helpers ---

func testDeviceCode() *trakt.DeviceCode {
	return &trakt.DeviceCode{
		DeviceCode:      "device-code",
		UserCode:        "ABCD1234",
		VerificationURL: "https://trakt.tv/activate",
		ExpiresIn:       600,
		Interval:        5,
	}
}

func testController(api deviceAPI, store SessionStore, maxAttempts int) (*Controller, *int) {
	c := newController(api, store, maxAttempts, time.Hour)
	sleeps := 0
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return c, &sleeps
}

// --- Tests ---

func TestDeviceFlowSucceedsOnThirdAttempt(t *testing.T) {
	api := &mockDeviceAPI{
		deviceCode: testDeviceCode(),
		exchanges: []exchangeResult{
			{err: trakt.ErrAuthorizationPending},
			{err: trakt.ErrAuthorizationPending},
			{token: &trakt.Token{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 7776000}},
		},
		user: &trakt.User{Username: "tester"},
	}
	store := &mockSessionStore{}
	c, sleeps := testController(api, store, 60)

	c.poll(context.Background(), testDeviceCode(), 0)

	if api.exchangeCalls != 3 {
		t.Errorf("expected 3 exchange calls, got %d", api.exchangeCalls)
	}
	if *sleeps != 2 {
		t.Errorf("expected 2 sleeps between attempts, got %d", *sleeps)
	}
	if c.Status().State != StateAuthenticated {
		t.Errorf("expected authenticated state, got %v", c.Status().State)
	}
	if store.saved == nil {
		t.Fatal("expected a persisted session")
	}
	if store.saved.AccessToken != "access" {
		t.Errorf("unexpected access token %q", store.saved.AccessToken)
	}
	if store.saved.Username == nil || *store.saved.Username != "tester" {
		t.Errorf("expected username on session, got %v", store.saved.Username)
	}
	if store.saved.LastSyncAt == nil {
		t.Error("expected last sync time on session")
	}
}

func TestDeviceFlowCancelledMidPollPersistsNothing(t *testing.T) {
	api := &mockDeviceAPI{deviceCode: testDeviceCode()}
	store := &mockSessionStore{}
	c := newController(api, store, 60, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	c.poll(ctx, testDeviceCode(), 0)

	if c.Status().State != StateCancelled {
		t.Errorf("expected cancelled state, got %v", c.Status().State)
	}
	if store.saved != nil {
		t.Error("cancelled flow must not persist a session")
	}
}

func TestDeviceFlowTimesOutAfterMaxAttempts(t *testing.T) {
	api := &mockDeviceAPI{deviceCode: testDeviceCode()}
	store := &mockSessionStore{}
	c, sleeps := testController(api, store, 3)

	c.poll(context.Background(), testDeviceCode(), 0)

	if c.Status().State != StateTimedOut {
		t.Errorf("expected timed out state, got %v", c.Status().State)
	}
	if api.exchangeCalls != 3 {
		t.Errorf("expected 3 exchange calls, got %d", api.exchangeCalls)
	}
	if *sleeps != 2 {
		t.Errorf("expected 2 sleeps, got %d", *sleeps)
	}
	if store.saved != nil {
		t.Error("timed out flow must not persist a session")
	}
}

func TestDeviceFlowFailsOnExpiredCode(t *testing.T) {
	api := &mockDeviceAPI{
		deviceCode: testDeviceCode(),
		exchanges: []exchangeResult{
			{err: trakt.ErrDeviceCodeExpired},
		},
	}
	store := &mockSessionStore{}
	c, _ := testController(api, store, 60)

	c.poll(context.Background(), testDeviceCode(), 0)

	if c.Status().State != StateFailed {
		t.Errorf("expected failed state, got %v", c.Status().State)
	}
}

func TestDeviceFlowContinuesPastTransientErrors(t *testing.T) {
	api := &mockDeviceAPI{
		deviceCode: testDeviceCode(),
		exchanges: []exchangeResult{
			{err: errors.New("connection reset")},
			{err: trakt.ErrSlowDown},
			{token: &trakt.Token{AccessToken: "access"}},
		},
		userErr: errors.New("unavailable"),
	}
	store := &mockSessionStore{}
	c, _ := testController(api, store, 60)

	c.poll(context.Background(), testDeviceCode(), 0)

	if c.Status().State != StateAuthenticated {
		t.Errorf("expected authenticated state, got %v", c.Status().State)
	}
	if store.saved == nil {
		t.Fatal("expected a persisted session even without user info")
	}
	if store.saved.Username != nil {
		t.Error("session should have no username when the lookup fails")
	}
}

func TestStartExposesUserCode(t *testing.T) {
	api := &mockDeviceAPI{deviceCode: testDeviceCode()}
	store := &mockSessionStore{}
	c := newController(api, store, 60, time.Hour)
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	}

	dc, err := c.Start(context.Background())
	defer c.Cancel()
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if dc.UserCode != "ABCD1234" {
		t.Errorf("unexpected user code %q", dc.UserCode)
	}
	st := c.Status()
	if st.State != StateCodeRequested && st.State != StatePolling {
		t.Errorf("unexpected state %v", st.State)
	}
	if st.UserCode != "ABCD1234" || st.VerificationURL != "https://trakt.tv/activate" {
		t.Errorf("status should expose the code, got %+v", st)
	}
}

func TestRestartedFlowAuthenticates(t *testing.T) {
	api := &mockDeviceAPI{
		deviceCode: testDeviceCode(),
		exchanges: []exchangeResult{
			{err: trakt.ErrAuthorizationPending},
			{token: &trakt.Token{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 7776000}},
		},
		user: &trakt.User{Username: "tester"},
	}
	store := &mockSessionStore{}
	c := newController(api, store, 60, time.Hour)

	// Only the first flow sleeps: its exchange is pending, while the
	// second flow succeeds on its first attempt.
	parked := make(chan struct{})
	release := make(chan struct{})
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		close(parked)
		<-release
		return ctx.Err()
	}

	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	<-parked
	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	close(release)

	deadline := time.After(time.Second)
	for c.Status().State != StateAuthenticated {
		select {
		case <-deadline:
			t.Fatalf("expected authenticated state, got %v", c.Status().State)
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if store.saved == nil || store.saved.AccessToken != "access" {
		t.Fatalf("expected the second flow's session persisted, got %+v", store.saved)
	}
}

func TestValidAccessTokenServesFreshSession(t *testing.T) {
	api := &mockDeviceAPI{}
	store := &mockSessionStore{
		sess: &models.Session{
			ID:          models.SessionID,
			AccessToken: "fresh",
			ExpiresIn:   7776000,
			CreatedAt:   time.Now().Unix(),
		},
	}
	c, _ := testController(api, store, 60)

	token, err := c.ValidAccessToken(context.Background())
	if err != nil {
		t.Fatalf("expected fresh token, got error: %v", err)
	}
	if token != "fresh" {
		t.Errorf("unexpected token %q", token)
	}
	if api.refreshCalls != 0 {
		t.Errorf("fresh session should not be refreshed")
	}
}

func TestValidAccessTokenRefreshesExpiringSession(t *testing.T) {
	api := &mockDeviceAPI{
		refreshToken: &trakt.Token{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    7776000,
			CreatedAt:    time.Now().Unix(),
		},
	}
	store := &mockSessionStore{
		sess: &models.Session{
			ID:           models.SessionID,
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			ExpiresIn:    3600,
			CreatedAt:    time.Now().Add(-30 * time.Minute).Unix(),
		},
	}
	c, _ := testController(api, store, 60)

	token, err := c.ValidAccessToken(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if token != "new-access" {
		t.Errorf("expected refreshed token, got %q", token)
	}
	if len(store.updates) != 1 || store.updates[0].accessToken != "new-access" {
		t.Errorf("expected persisted token update, got %+v", store.updates)
	}
}

func TestValidAccessTokenRefreshFailureDeletesSession(t *testing.T) {
	api := &mockDeviceAPI{refreshErr: errors.New("invalid_grant")}
	store := &mockSessionStore{
		sess: &models.Session{
			ID:           models.SessionID,
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			ExpiresIn:    3600,
			CreatedAt:    time.Now().Add(-2 * time.Hour).Unix(),
		},
	}
	c, _ := testController(api, store, 60)

	_, err := c.ValidAccessToken(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if store.deleted != 1 {
		t.Errorf("expected session deleted after refresh failure, got %d deletes", store.deleted)
	}
}

func TestValidAccessTokenWithoutSession(t *testing.T) {
	c, _ := testController(&mockDeviceAPI{}, &mockSessionStore{}, 60)
	_, err := c.ValidAccessToken(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	store := &mockSessionStore{
		sess: &models.Session{ID: models.SessionID, AccessToken: "access"},
	}
	c, _ := testController(&mockDeviceAPI{}, store, 60)

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if store.deleted != 1 {
		t.Errorf("expected 1 delete, got %d", store.deleted)
	}
	if c.Status().State != StateIdle {
		t.Errorf("expected idle state after logout, got %v", c.Status().State)
	}
}

func TestSessionExpiresWithin(t *testing.T) {
	now := time.Now()
	s := &models.Session{
		CreatedAt: now.Unix(),
		ExpiresIn: 1800,
	}
	if !s.ExpiresWithin(time.Hour, now) {
		t.Error("a session expiring in 30m is within a 1h lookahead")
	}
	if s.ExpiresWithin(10*time.Minute, now) {
		t.Error("a session expiring in 30m is not within a 10m lookahead")
	}
}
