package googledrive

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

const (
	// DriveScope grants full read/write access to Drive files.
	DriveScope = "https://www.googleapis.com/auth/drive"

	defaultTokenURL = "https://oauth2.googleapis.com/token"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// tokenLifetime is the requested validity of minted bearer tokens.
	tokenLifetime = time.Hour
)

// AuthError indicates the service-account token exchange failed.
// It aborts the whole request.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("google auth error: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ServiceAccount holds the fields of a service-account credential JSON that
// the token exchange needs.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// TokenSource mints short-lived bearer tokens for the Drive scope by signing
// a JWT with the service-account key and exchanging it at the OAuth2 token
// endpoint. It implements oauth2.TokenSource so Google API clients can
// consume it directly.
type TokenSource struct {
	account    ServiceAccount
	signingKey *rsa.PrivateKey
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenSource parses a service-account credential JSON and returns a
// TokenSource for the Drive scope.
func NewTokenSource(serviceAccountJSON string) (*TokenSource, error) {
	var account ServiceAccount
	if err := json.Unmarshal([]byte(serviceAccountJSON), &account); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("parse service account: %w", err)}
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, &AuthError{Err: fmt.Errorf("service account is missing client_email or private_key")}
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("parse private key: %w", err)}
	}

	tokenURL := account.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	return &TokenSource{
		account:    account,
		signingKey: key,
		tokenURL:   tokenURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token implements oauth2.TokenSource.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	now := ts.now()

	claims := jwt.MapClaims{
		"iss":   ts.account.ClientEmail,
		"scope": DriveScope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.signingKey)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("sign assertion: %w", err)}
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}

	resp, err := ts.httpClient.PostForm(ts.tokenURL, form)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("token exchange: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Err: fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{Err: fmt.Errorf("token response has no access_token")}
	}

	expiry := now.Add(tokenLifetime)
	if tr.ExpiresIn > 0 {
		expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   "Bearer",
		Expiry:      expiry,
	}, nil
}
