package security

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"e2e_automation/domain/entities"
)

func TestIsSensitiveField(t *testing.T) {
	layer := NewSecurityLayer("otp")

	for _, key := range []string{"password", "PASSWORD", "session_file", "X-Auth-Token", "api_key", "Set-Cookie", "client_secret", "OTP"} {
		assert.True(t, layer.IsSensitiveField(key), key)
	}
	for _, key := range []string{"username", "url", "env", "driver", "", "  "} {
		assert.False(t, layer.IsSensitiveField(key), key)
	}
}

func TestRedactValue(t *testing.T) {
	layer := NewSecurityLayer()

	assert.Equal(t, Redacted, layer.RedactValue("PASSWORD", "hunter2"))
	assert.Equal(t, "", layer.RedactValue("PASSWORD", ""), "empty values stay empty so missing secrets remain visible")
	assert.Equal(t, "https://dev.example.com", layer.RedactValue("BASE_URL", "https://dev.example.com"))
}

func TestRedactCookies(t *testing.T) {
	layer := NewSecurityLayer()
	cookies := []entities.Cookie{
		{Name: "sid", Value: "abc123", Domain: "app.test", Path: "/", HTTPOnly: true},
		{Name: "theme", Value: "dark", Domain: "app.test"},
		{Name: "empty"},
	}

	redacted := layer.RedactCookies(cookies)

	require.Len(t, redacted, 3)
	assert.Equal(t, Redacted, redacted[0].Value)
	assert.Equal(t, "sid", redacted[0].Name)
	assert.Equal(t, "app.test", redacted[0].Domain)
	assert.True(t, redacted[0].HTTPOnly)
	assert.Equal(t, Redacted, redacted[1].Value)
	assert.Equal(t, "", redacted[2].Value)
	assert.Equal(t, "abc123", cookies[0].Value, "input is not modified")
}

func TestHook_MasksSensitiveFields(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(NewSecurityLayer().Hook())
	captured := logtest.NewLocal(logger)

	entry := logger.WithFields(logrus.Fields{"password": "hunter2", "user": "alice", "token": ""})
	entry.Info("login")

	last := captured.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, Redacted, last.Data["password"])
	assert.Equal(t, "alice", last.Data["user"])
	assert.Equal(t, "", last.Data["token"])
	assert.Equal(t, "hunter2", entry.Data["password"], "the caller's entry keeps its fields")
}

func testRedactCookies_Properties(t *rapid.T) {
	layer := NewSecurityLayer()
	n := rapid.IntRange(0, 8).Draw(t, "n")
	cookies := make([]entities.Cookie, n)
	for i := range cookies {
		cookies[i] = entities.Cookie{
			Name:   rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name"),
			Value:  rapid.String().Draw(t, "value"),
			Domain: rapid.StringMatching(`[a-z]{1,8}\.test`).Draw(t, "domain"),
		}
	}

	redacted := layer.RedactCookies(cookies)
	if len(redacted) != len(cookies) {
		t.Fatalf("got %d cookies, want %d", len(redacted), len(cookies))
	}
	for i := range cookies {
		if redacted[i].Name != cookies[i].Name || redacted[i].Domain != cookies[i].Domain {
			t.Fatalf("cookie %d identity changed: %+v -> %+v", i, cookies[i], redacted[i])
		}
		if cookies[i].Value != "" && redacted[i].Value != Redacted {
			t.Fatalf("cookie %d value leaked: %q", i, redacted[i].Value)
		}
	}
}

func TestRedactCookies_Properties(t *testing.T) {
	rapid.Check(t, testRedactCookies_Properties)
}
