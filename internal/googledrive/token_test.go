package googledrive

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceAccountJSON(t *testing.T, tokenURI string) (string, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	account := map[string]string{
		"client_email": "svc@test-project.iam.gserviceaccount.com",
		"private_key":  string(pemKey),
		"token_uri":    tokenURI,
	}
	raw, err := json.Marshal(account)
	require.NoError(t, err)

	return string(raw), key
}

func TestTokenSource_Exchange(t *testing.T) {
	var key *rsa.PrivateKey

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.FormValue("grant_type"))

		assertion := r.FormValue("assertion")
		require.NotEmpty(t, assertion)

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(assertion, claims, func(tok *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		})
		require.NoError(t, err)
		require.True(t, parsed.Valid)

		assert.Equal(t, "svc@test-project.iam.gserviceaccount.com", claims["iss"])
		assert.Equal(t, DriveScope, claims["scope"])
		assert.NotEmpty(t, claims["aud"])
		assert.NotNil(t, claims["iat"])
		assert.NotNil(t, claims["exp"])

		iat := int64(claims["iat"].(float64))
		exp := int64(claims["exp"].(float64))
		assert.Equal(t, int64(3600), exp-iat)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "ya29.test-token", "expires_in": 3600}`))
	}))
	defer server.Close()

	raw, k := testServiceAccountJSON(t, server.URL)
	key = k

	ts, err := NewTokenSource(raw)
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.test-token", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.False(t, tok.Expiry.IsZero())
}

func TestTokenSource_EndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer server.Close()

	raw, _ := testServiceAccountJSON(t, server.URL)

	ts, err := NewTokenSource(raw)
	require.NoError(t, err)

	_, err = ts.Token()
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "status 400")
}

func TestTokenSource_MissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type": "Bearer"}`))
	}))
	defer server.Close()

	raw, _ := testServiceAccountJSON(t, server.URL)

	ts, err := NewTokenSource(raw)
	require.NoError(t, err)

	_, err = ts.Token()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestNewTokenSource_InvalidJSON(t *testing.T) {
	_, err := NewTokenSource("not-json")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestNewTokenSource_MissingFields(t *testing.T) {
	_, err := NewTokenSource(`{"client_email": "svc@test.iam"}`)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}
