package util

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWTRoundTrip(t *testing.T) {
	p := Principal{
		Subject: "MGR1a2b3c4d",
		Name:    "Priya",
		Role:    "MANAGER",
		Scope:   []string{"PRJ12345", "PRJ67890"},
	}

	token, err := GenerateJWT(p, testSecret, time.Hour)
	require.NoError(t, err)

	got, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(Principal{Subject: "admin", Role: "HEAD"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(Principal{Subject: "admin", Role: "HEAD"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, testSecret)
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	_, err := ParseJWT("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestCanAccessProject(t *testing.T) {
	head := Principal{Role: "HEAD", Scope: []string{"*"}}
	assert.True(t, head.CanAccessProject("PRJ12345"))
	assert.True(t, head.CanAccessProject("PRJ99999"))

	client := Principal{Role: "CLIENT", Scope: []string{"PRJ12345"}}
	assert.True(t, client.CanAccessProject("PRJ12345"))
	assert.False(t, client.CanAccessProject("PRJ67890"))

	empty := Principal{Role: "WORKER"}
	assert.False(t, empty.CanAccessProject("PRJ12345"))
}

func TestExtractToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Equal(t, "", ExtractToken(req))

	req.Header.Set("Authorization", "abc123")
	assert.Equal(t, "", ExtractToken(req))
}
