package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/trakt"
)

const (
	pollAttemptsFlag     = "auth-poll-attempts"
	refreshLookaheadFlag = "auth-refresh-lookahead"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.IntFlag{
			Name:   pollAttemptsFlag,
			Usage:  "max token poll attempts before a device flow times out",
			Value:  60,
			EnvVar: "AUTH_POLL_ATTEMPTS",
		},
		cli.DurationFlag{
			Name:   refreshLookaheadFlag,
			Usage:  "refresh the access token when it expires within this window",
			Value:  time.Hour,
			EnvVar: "AUTH_REFRESH_LOOKAHEAD",
		},
	)
}

// State of the device authorization flow.
type State string

const (
	StateIdle          State = "idle"
	StateCodeRequested State = "code_requested"
	StatePolling       State = "polling"
	StateAuthenticated State = "authenticated"
	StateTimedOut      State = "timed_out"
	StateCancelled     State = "cancelled"
	StateFailed        State = "failed"
)

// Status is a snapshot of the flow for rendering.
type Status struct {
	State           State  `json:"state"`
	UserCode        string `json:"user_code,omitempty"`
	VerificationURL string `json:"verification_url,omitempty"`
}

var ErrNotAuthenticated = errors.New("not authenticated")

// deviceAPI is the slice of the upstream client the controller needs.
type deviceAPI interface {
	DeviceCode(ctx context.Context) (*trakt.DeviceCode, error)
	ExchangeDeviceCode(ctx context.Context, deviceCode string) (*trakt.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*trakt.Token, error)
	CurrentUser(ctx context.Context, accessToken string) (*trakt.User, error)
}

// Controller drives the device authorization flow against the ranking
// source and keeps the persisted session usable. One flow at a time;
// starting a new one cancels the previous.
type Controller struct {
	api         deviceAPI
	sessions    SessionStore
	maxAttempts int
	lookahead   time.Duration

	mu       sync.Mutex
	state    State
	gen      uint64
	userCode string
	verifURL string
	cancel   context.CancelFunc

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func New(c *cli.Context, api *trakt.Api, sessions SessionStore) *Controller {
	if api == nil {
		return nil
	}
	return newController(api, sessions, c.Int(pollAttemptsFlag), c.Duration(refreshLookaheadFlag))
}

func newController(api deviceAPI, sessions SessionStore, maxAttempts int, lookahead time.Duration) *Controller {
	return &Controller{
		api:         api,
		sessions:    sessions,
		maxAttempts: maxAttempts,
		lookahead:   lookahead,
		state:       StateIdle,
		sleep:       sleepWithContext,
		now:         time.Now,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Start requests a device code and begins polling for its approval in the
// background. Any flow already in progress is cancelled first.
func (c *Controller) Start(ctx context.Context) (*trakt.DeviceCode, error) {
	dc, err := c.api.DeviceCode(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "request device code")
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.state = StateCodeRequested
	c.userCode = dc.UserCode
	c.verifURL = dc.VerificationURL
	c.mu.Unlock()

	go c.poll(pollCtx, dc, gen)
	return dc, nil
}

func (c *Controller) poll(ctx context.Context, dc *trakt.DeviceCode, gen uint64) {
	interval := time.Duration(dc.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	c.setState(gen, StatePolling)
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, interval); err != nil {
				c.setState(gen, StateCancelled)
				return
			}
		}
		if ctx.Err() != nil {
			c.setState(gen, StateCancelled)
			return
		}
		token, err := c.api.ExchangeDeviceCode(ctx, dc.DeviceCode)
		if err == nil {
			if ctx.Err() != nil {
				c.setState(gen, StateCancelled)
				return
			}
			c.finish(ctx, token, gen)
			return
		}
		switch {
		case errors.Is(err, trakt.ErrAuthorizationPending), errors.Is(err, trakt.ErrSlowDown):
			continue
		case errors.Is(err, trakt.ErrDeviceCodeExpired):
			c.setState(gen, StateFailed)
			return
		case errors.Is(err, context.Canceled):
			c.setState(gen, StateCancelled)
			return
		default:
			log.WithError(err).Warn("device token poll failed")
		}
	}
	c.setState(gen, StateTimedOut)
}

func (c *Controller) finish(ctx context.Context, token *trakt.Token, gen uint64) {
	sess := sessionFromToken(token, c.now())
	if user, err := c.api.CurrentUser(ctx, token.AccessToken); err != nil {
		log.WithError(err).Warn("fetch current user failed")
	} else {
		sess.Username = &user.Username
		sess.UserSlug = &user.IDs.Slug
	}
	if !c.currentFlow(gen) {
		return
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		log.WithError(err).Error("persist session failed")
		c.setState(gen, StateFailed)
		return
	}
	c.setState(gen, StateAuthenticated)
}

func sessionFromToken(token *trakt.Token, now time.Time) *models.Session {
	createdAt := token.CreatedAt
	if createdAt == 0 {
		createdAt = now.Unix()
	}
	return &models.Session{
		ID:           models.SessionID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
		Scope:        token.Scope,
		CreatedAt:    createdAt,
		LastSyncAt:   &now,
	}
}

// Cancel stops a flow in progress. Flows already settled are untouched.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.gen++
	}
	if c.state == StateCodeRequested || c.state == StatePolling {
		c.state = StateCancelled
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{State: c.state}
	if c.state == StateCodeRequested || c.state == StatePolling {
		st.UserCode = c.userCode
		st.VerificationURL = c.verifURL
	}
	return st
}

// setState applies a transition on behalf of the poll goroutine of flow
// gen. Writes from a superseded flow are dropped so a restarted or
// cancelled flow cannot clobber the state of the live one.
func (c *Controller) setState(gen uint64, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state = st
}

func (c *Controller) currentFlow(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// ValidAccessToken returns a usable access token, refreshing the session
// when it is about to expire. A failed refresh deletes the session so the
// next call reports unauthenticated instead of retrying a dead token.
func (c *Controller) ValidAccessToken(ctx context.Context) (string, error) {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ErrNotAuthenticated
	}
	if !sess.ExpiresWithin(c.lookahead, c.now()) {
		return sess.AccessToken, nil
	}
	token, err := c.api.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		if derr := c.sessions.Delete(ctx); derr != nil {
			log.WithError(derr).Error("delete session failed")
		}
		return "", errors.Wrap(err, "refresh token")
	}
	createdAt := token.CreatedAt
	if createdAt == 0 {
		createdAt = c.now().Unix()
	}
	if err := c.sessions.UpdateTokens(ctx, token.AccessToken, token.RefreshToken, token.ExpiresIn, createdAt); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Session returns the persisted session or nil.
func (c *Controller) Session(ctx context.Context) (*models.Session, error) {
	return c.sessions.Get(ctx)
}

// Logout cancels any flow in progress and deletes the persisted session.
func (c *Controller) Logout(ctx context.Context) error {
	c.Cancel()
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	return c.sessions.Delete(ctx)
}
