package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken(&Payload{ProfileID: "prf_abcdefABCDEF"}, testSecret, time.Hour)
	require.NoError(t, err)

	payload, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "prf_abcdefABCDEF", payload.ProfileID)
	assert.Equal(t, TokenIssuer, payload.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(&Payload{ProfileID: "prf_abcdefABCDEF"}, testSecret, -time.Minute)
	require.NoError(t, err)

	wrongSecret, err := GenerateToken(&Payload{ProfileID: "prf_abcdefABCDEF"}, "other", time.Hour)
	require.NoError(t, err)

	noProfile, err := GenerateToken(&Payload{}, testSecret, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": wrongSecret,
		"no profile":   noProfile,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token, testSecret)
			assert.Error(t, err)
		})
	}
}

func TestProfileExtractorMiddleware(t *testing.T) {
	token, err := GenerateToken(&Payload{ProfileID: "prf_abcdefABCDEF"}, testSecret, time.Hour)
	require.NoError(t, err)

	var seen string
	handler := ProfileExtractorMiddleware(testSecret)(RequireProfile(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ProfileID(r)
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/prefs", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "prf_abcdefABCDEF", seen)
	})

	t.Run("query", func(t *testing.T) {
		seen = ""
		r := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "prf_abcdefABCDEF", seen)
	})

	t.Run("missing", func(t *testing.T) {
		seen = ""
		r := httptest.NewRequest(http.MethodGet, "/api/prefs", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, seen)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/prefs", nil)
		r.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
