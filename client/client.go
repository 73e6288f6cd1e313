package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTimeout = 3 * time.Second
	maxContentSize = 1 << 20 // encrypted profile blobs are small
)

// Client talks to the two external collaborators: the zero-knowledge proof
// verifier and the content-addressed profile store. Both are consumed
// read-only; the node never writes through this client.
type Client struct {
	client      *http.Client
	cache       *cache.Cache
	userAgent   string
	verifierURL string
	contentURL  string
}

func New(verifierURL, contentURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:      &httpClient,
		cache:       cache.New(10*time.Minute, 15*time.Minute),
		userAgent:   "kindred-node",
		verifierURL: verifierURL,
		contentURL:  contentURL,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// ProofSubmission is the externally produced group-membership proof, passed
// through to the verifier untouched.
type ProofSubmission struct {
	Root          string    `json:"root"`
	GroupID       string    `json:"groupId"`
	Signal        string    `json:"signal"`
	SignalHash    string    `json:"signalHash"`
	NullifierHash string    `json:"nullifierHash"`
	Proof         [8]string `json:"proof"`
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	Detail string `json:"detail"`
}

// VerifyProof submits a proof to the external verifier and reports whether
// it accepted. A false return with nil error is a definitive rejection; an
// error means the verifier could not be consulted.
func (c *Client) VerifyProof(ctx context.Context, submission ProofSubmission) (bool, string, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return false, "", fmt.Errorf("failed to encode proof: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifierURL+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		return false, "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("failed to reach verifier: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("unexpected verifier status code: %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, "", fmt.Errorf("failed to decode verifier response: %v", err)
	}

	return result.Valid, result.Detail, nil
}

// FetchContent retrieves the encrypted blob behind a content reference.
// Results are cached in-process; references are immutable so staleness is
// not a concern.
func (c *Client) FetchContent(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("content reference cannot be empty")
	}

	cacheKey := "content:" + ref
	if x, found := c.cache.Get(cacheKey); found {
		return x.([]byte), nil
	}

	endpoint := c.contentURL + "/v1/content/" + url.PathEscape(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("content not found: %s", ref)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read content body: %v", err)
	}

	c.cache.Set(cacheKey, blob, cache.DefaultExpiration)

	return blob, nil
}
