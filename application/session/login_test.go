package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2e_automation/application/pages"
	"e2e_automation/application/wait"
	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/infrastructure/browser/fakebrowser"
	"e2e_automation/infrastructure/storage"
)

const baseURL = "https://app.test"

var validCreds = entities.Credentials{Username: "user@example.com", Password: "secret"}

type fixture struct {
	app     *fakebrowser.App
	browser *fakebrowser.Browser
	path    string
	logs    *logtest.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	app := fakebrowser.NewApp(baseURL, validCreds.Username, validCreds.Password)
	f := &fixture{app: app, path: filepath.Join(t.TempDir(), "session.json")}
	f.newBrowser()
	return f
}

// newBrowser starts a fresh browser against the same app, as a new test run would
func (f *fixture) newBrowser() {
	f.browser = fakebrowser.New()
	f.app.Install(f.browser)
}

func (f *fixture) options() Options {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f.logs = hook
	clock := wait.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return Options{
		EntryURL:      f.app.BaseURL,
		LandingURL:    f.app.DashboardURL(),
		LandingMarker: pages.Sidebar,
		Form:          pages.LoginFormLocators(),
		Waiter:        wait.Waiter{Timeout: 3 * time.Second, Interval: 500 * time.Millisecond, Clock: clock},
		Logger:        logger,
	}
}

func (f *fixture) login(t *testing.T, creds entities.Credentials) (Result, error) {
	t.Helper()
	return LoginWithSessionReuse(context.Background(), f.browser, storage.NewSessionFile(f.path), creds, f.options())
}

func (f *fixture) saveSession(t *testing.T, cookies ...entities.Cookie) []byte {
	t.Helper()
	require.NoError(t, storage.NewSessionFile(f.path).Save(cookies))
	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	return data
}

func (f *fixture) savedSID(t *testing.T) string {
	t.Helper()
	session, err := storage.NewSessionFile(f.path).Load()
	require.NoError(t, err)
	for _, c := range session {
		if c.Name == fakebrowser.SessionCookie {
			return c.Value
		}
	}
	t.Fatalf("no %s cookie in %s", fakebrowser.SessionCookie, f.path)
	return ""
}

func (f *fixture) touchedLoginForm() bool {
	for _, loc := range f.browser.Lookups() {
		switch loc {
		case pages.EmailField, pages.PasswordField, pages.LoginButton, pages.LoginLink:
			return true
		}
	}
	return false
}

func (f *fixture) warnings() []string {
	var out []string
	for _, e := range f.logs.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestLogin_ValidSessionSkipsForm(t *testing.T) {
	f := newFixture(t)
	before := f.saveSession(t, f.app.Issue())

	res, err := f.login(t, validCreds)
	require.NoError(t, err)

	assert.True(t, res.Restored)
	assert.Same(t, f.browser, res.Context)
	assert.False(t, f.touchedLoginForm(), "restored sessions never touch the login form")
	assert.Zero(t, f.app.Attempts())
	assert.Empty(t, f.warnings())

	after, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a restored session is not rewritten")

	url, err := f.browser.CurrentURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.app.DashboardURL(), url)
}

func TestLogin_MissingSessionLogsInAndSaves(t *testing.T) {
	f := newFixture(t)

	res, err := f.login(t, validCreds)
	require.NoError(t, err)

	assert.False(t, res.Restored)
	assert.Equal(t, 1, f.app.Attempts())
	live, _ := f.browser.Cookie(fakebrowser.SessionCookie)
	assert.Equal(t, live, f.savedSID(t))
	assert.Len(t, f.warnings(), 1)

	info, err := os.Stat(f.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLogin_ExpiredSessionIsReplaced(t *testing.T) {
	f := newFixture(t)
	stale := f.app.Issue()
	f.saveSession(t, stale)
	f.app.RevokeAll()

	res, err := f.login(t, validCreds)
	require.NoError(t, err)

	assert.False(t, res.Restored)
	assert.NotEqual(t, stale.Value, f.savedSID(t), "the session file is overwritten with the new cookies")
	require.Len(t, f.warnings(), 1)
	assert.Contains(t, f.warnings()[0], "saved session was not accepted")
}

func TestLogin_CorruptSessionFallsBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.path, []byte("{not json"), 0o600))

	res, err := f.login(t, validCreds)
	require.NoError(t, err)

	assert.False(t, res.Restored)
	assert.NotEmpty(t, f.savedSID(t))
}

func TestLogin_EmptySessionFallsBack(t *testing.T) {
	f := newFixture(t)
	f.saveSession(t)

	res, err := f.login(t, validCreds)
	require.NoError(t, err)
	assert.False(t, res.Restored)
	require.Len(t, f.warnings(), 1)
	assert.Contains(t, f.warnings()[0], "no saved session")
}

func TestLogin_InvalidCredentialsIsFatal(t *testing.T) {
	f := newFixture(t)

	res, err := f.login(t, entities.Credentials{Username: validCreds.Username, Password: "wrong"})

	require.Error(t, err)
	assert.Equal(t, errs.FatalLoginFailure, errs.CodeOf(err))
	assert.True(t, errs.Is(err, errs.Timeout), "the landing URL never arrives")
	assert.Nil(t, res.Context)
	assert.Equal(t, 1, f.app.Attempts())
	_, statErr := os.Stat(f.path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing is saved after a failed login")
}

func TestLogin_RevokedSessionAndInvalidCredentialsIsFatal(t *testing.T) {
	f := newFixture(t)
	f.saveSession(t, f.app.Issue())
	f.app.RevokeAll()

	_, err := f.login(t, entities.Credentials{Username: "nobody@example.com", Password: "x"})
	assert.Equal(t, errs.FatalLoginFailure, errs.CodeOf(err))
}

func TestLogin_SessionCarriesAcrossRuns(t *testing.T) {
	f := newFixture(t)

	first, err := f.login(t, validCreds)
	require.NoError(t, err)
	require.False(t, first.Restored)
	saved, err := os.ReadFile(f.path)
	require.NoError(t, err)

	f.newBrowser()
	second, err := f.login(t, validCreds)
	require.NoError(t, err)

	assert.True(t, second.Restored)
	assert.Equal(t, 1, f.app.Attempts())
	again, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, saved, again)
}

type failingStore struct {
	session entities.Session
	saveErr error
}

func (s *failingStore) Load() (entities.Session, error) { return s.session, nil }
func (s *failingStore) Save(entities.Session) error     { return s.saveErr }
func (s *failingStore) Clear() error                    { return nil }

func TestLogin_SaveFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	store := &failingStore{saveErr: errors.New("disk full")}

	_, err := LoginWithSessionReuse(context.Background(), f.browser, store, validCreds, f.options())

	require.Error(t, err)
	assert.Equal(t, errs.FatalLoginFailure, errs.CodeOf(err))
	assert.ErrorContains(t, err, "disk full")
}

func TestLogin_DriverFailureDuringRestoreFallsBack(t *testing.T) {
	f := newFixture(t)
	// cookies with no name are rejected by the browser
	store := &failingStore{session: entities.Session{{Value: "orphan"}}}

	res, err := LoginWithSessionReuse(context.Background(), f.browser, store, validCreds, f.options())
	require.NoError(t, err)
	assert.False(t, res.Restored)
	require.Len(t, f.warnings(), 1)
	assert.Contains(t, f.warnings()[0], "failed to apply saved cookies")
}

func TestLogin_FormWithoutLink(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.EntryURL = f.app.LoginURL()
	opts.Form.Link = nil

	res, err := LoginWithSessionReuse(context.Background(), f.browser, storage.NewSessionFile(f.path), validCreds, opts)
	require.NoError(t, err)
	assert.False(t, res.Restored)
}

func TestLogin_InvalidOptions(t *testing.T) {
	f := newFixture(t)

	_, err := LoginWithSessionReuse(context.Background(), f.browser, storage.NewSessionFile(f.path), validCreds, Options{})

	assert.Equal(t, errs.InvalidConfig, errs.CodeOf(err))
	assert.Empty(t, f.browser.Navigations())
}
