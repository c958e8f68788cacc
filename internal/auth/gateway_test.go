package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/ender-crm/internal/database"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	db       *database.DB
	gateway  *Gateway
	sessions *sessions.Manager
	users    *services.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.New("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	users := services.NewUserService(db).WithHashCost(bcrypt.MinCost)
	mgr := sessions.NewManager(sessions.NewSQLStore(db), NewTokenSigner("test-secret"), sessions.Options{
		CookieName: "crm_session",
		TTL:        time.Hour,
	})
	return &fixture{db: db, gateway: NewGateway(users, mgr), sessions: mgr, users: users}
}

func (f *fixture) do(h http.Handler, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/records/add", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.sessions.Middleware(h).ServeHTTP(rec, req)
	return rec
}

func TestGateway_LoginThenGatedRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.CreateUser(context.Background(), "ana", "", "s3cret-pass")
	require.NoError(t, err)

	rec := f.do(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := f.gateway.Authenticate(r.Context(), "ana", "s3cret-pass")
		require.NoError(t, err)
		require.NoError(t, f.gateway.EstablishSession(w, r, user))
	}), nil)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	reached := false
	gated := f.gateway.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		user, ok := CurrentUser(r)
		assert.True(t, ok)
		assert.Equal(t, "ana", user.Username)
	}))
	rec = f.do(gated, cookies)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateway_RejectsInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.CreateUser(context.Background(), "ana", "", "s3cret-pass")
	require.NoError(t, err)

	_, err = f.gateway.Authenticate(context.Background(), "ana", "nope")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestGateway_GateRedirectsAnonymous(t *testing.T) {
	f := newFixture(t)

	reached := false
	gated := f.gateway.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))
	rec := f.do(gated, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestGateway_EndSessionLogsOut(t *testing.T) {
	f := newFixture(t)
	user, err := f.users.CreateUser(context.Background(), "ana", "", "s3cret-pass")
	require.NoError(t, err)

	rec := f.do(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, f.gateway.EstablishSession(w, r, user))
	}), nil)
	loggedIn := rec.Result().Cookies()

	rec = f.do(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, f.gateway.EndSession(w, r))
	}), loggedIn)
	loggedOut := rec.Result().Cookies()

	for _, cookies := range [][]*http.Cookie{loggedIn, loggedOut} {
		reached := false
		gated := f.gateway.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
		}))
		f.do(gated, cookies)
		assert.False(t, reached, "old and new cookies must both be anonymous after logout")
	}
}

func TestGateway_VerifySessionDropsRemovedAccount(t *testing.T) {
	f := newFixture(t)
	user, err := f.users.CreateUser(context.Background(), "ana", "", "s3cret-pass")
	require.NoError(t, err)

	rec := f.do(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, f.gateway.EstablishSession(w, r, user))
	}), nil)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, f.sessions.CookieName(), cookies[0].Name)

	reached := 0
	chain := f.gateway.VerifySession(f.gateway.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
	})))

	rec = f.do(chain, cookies)
	assert.Equal(t, 1, reached, "existing account passes the gate")

	_, err = f.db.Exec("DELETE FROM users WHERE id = ?", user.ID)
	require.NoError(t, err)

	rec = f.do(chain, cookies)
	assert.Equal(t, 1, reached, "removed account is treated as anonymous")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}
