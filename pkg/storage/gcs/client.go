package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/logger"
)

const (
	defaultTokenEndpoint   = "https://oauth2.googleapis.com/token"
	defaultStorageEndpoint = "https://storage.googleapis.com"
	oauthScope             = "https://www.googleapis.com/auth/devstorage.read_write"
	metadataTokenURL       = "http://metadata.google.internal/computeMetadata/v1/instance/service-accounts/default/token"
	pingTimeout            = 5 * time.Second
)

// Client talks to the Cloud Storage JSON API for object uploads and deletes.
type Client struct {
	httpClient *http.Client
	bucket     string
	endpoint   string
	tokens     *tokenSource
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket    string
	Name      string
	PublicURL string
}

// NewClient builds a storage client and verifies bucket access.
func NewClient(ctx context.Context, cfg config.GCSConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var ts *tokenSource
	var err error
	switch {
	case cfg.CredentialsJSON != "":
		ts, err = serviceAccountTokens(httpClient, cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		raw, readErr := os.ReadFile(cfg.CredentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("reading credentials file: %w", readErr)
		}
		ts, err = serviceAccountTokens(httpClient, string(raw))
	default:
		ts = metadataTokens(httpClient)
	}
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: httpClient,
		bucket:     cfg.BucketName,
		endpoint:   defaultStorageEndpoint,
		tokens:     ts,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}
	return client, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// Ping lists at most one object to confirm credentials and bucket access.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokens == nil {
		return errors.New("gcs client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.endpoint, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError("gcs bucket check failed", resp)
	}
	return nil
}

// Upload streams an object into the bucket and returns its location.
func (c *Client) Upload(ctx context.Context, object, contentType string, body io.Reader) (*ObjectInfo, error) {
	if strings.TrimSpace(object) == "" {
		return nil, errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u := fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		c.endpoint, url.PathEscape(c.bucket), url.QueryEscape(object),
	)
	resp, err := c.do(ctx, http.MethodPost, u, contentType, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("gcs upload failed", resp)
	}

	var meta struct {
		Bucket string `json:"bucket"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if meta.Bucket == "" {
		meta.Bucket = c.bucket
	}
	if meta.Name == "" {
		meta.Name = object
	}
	return &ObjectInfo{
		Bucket:    meta.Bucket,
		Name:      meta.Name,
		PublicURL: fmt.Sprintf("%s/%s/%s", c.endpoint, url.PathEscape(meta.Bucket), encodeObjectPath(meta.Name)),
	}, nil
}

// Delete removes an object. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, object string) error {
	if strings.TrimSpace(object) == "" {
		return errors.New("object name is required")
	}
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.bucket), url.QueryEscape(object))
	resp, err := c.do(ctx, http.MethodDelete, u, "", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return apiError("gcs delete failed", resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u, contentType string, body io.Reader) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func encodeObjectPath(name string) string {
	parts := strings.Split(name, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func apiError(prefix string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("%s: %s: %s", prefix, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("%s: %s", prefix, resp.Status)
}

type tokenSource struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	fetch  func(context.Context) (string, time.Time, error)
}

func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Until(t.expiry) > time.Minute {
		return t.token, nil
	}
	token, expiry, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}
	t.token = token
	t.expiry = expiry
	return token, nil
}

func serviceAccountTokens(client *http.Client, jsonCreds string) (*tokenSource, error) {
	var creds struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
		TokenURI    string `json:"token_uri"`
	}
	if err := json.Unmarshal([]byte(jsonCreds), &creds); err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, errors.New("invalid service account credentials")
	}
	tokenURI := creds.TokenURI
	if tokenURI == "" {
		tokenURI = defaultTokenEndpoint
	}
	key, err := parsePrivateKey(creds.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &tokenSource{
		fetch: func(ctx context.Context) (string, time.Time, error) {
			assertion, err := signedAssertion(creds.ClientEmail, tokenURI, key)
			if err != nil {
				return "", time.Time{}, err
			}
			form := url.Values{}
			form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
			form.Set("assertion", assertion)

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURI, strings.NewReader(form.Encode()))
			if err != nil {
				return "", time.Time{}, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return decodeTokenResponse(client, req)
		},
	}, nil
}

func metadataTokens(client *http.Client) *tokenSource {
	return &tokenSource{
		fetch: func(ctx context.Context) (string, time.Time, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataTokenURL, nil)
			if err != nil {
				return "", time.Time{}, err
			}
			req.Header.Set("Metadata-Flavor", "Google")
			return decodeTokenResponse(client, req)
		},
	}
}

func decodeTokenResponse(client *http.Client, req *http.Request) (string, time.Time, error) {
	resp, err := client.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", time.Time{}, err
	}
	return tokenResp.AccessToken, time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second), nil
}

func signedAssertion(email, audience string, key *rsa.PrivateKey) (string, error) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	now := time.Now()
	claims, err := json.Marshal(map[string]any{
		"iss":   email,
		"scope": oauthScope,
		"aud":   audience,
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
	})
	if err != nil {
		return "", err
	}
	unsigned := header + "." + base64.RawURLEncoding.EncodeToString(claims)

	hash := sha256.Sum256([]byte(unsigned))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hash[:])
	if err != nil {
		return "", err
	}
	return unsigned + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("invalid private key")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if priv, ok := key.(*rsa.PrivateKey); ok {
			return priv, nil
		}
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.New("unsupported private key format")
	}
	return priv, nil
}
