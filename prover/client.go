package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/layer-3/zkauth/zkp"
)

// APIError is returned when the verifier answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("verifier returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a zkauth verifier over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Params must match the verifier's group. Defaults to zkp.Default().
	Params *zkp.Params
	// Random supplies the ephemeral k. Defaults to crypto/rand.
	Random *zkp.Source
}

// NewClient creates a client for the verifier at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Params: zkp.Default(),
		Random: zkp.DefaultSource,
	}
}

// Register derives x from password and registers (y1, y2) for username.
func (c *Client) Register(ctx context.Context, username, password string) error {
	x := DeriveSecret(c.Params, username, password)
	y1, y2 := Registration(c.Params, x)

	var out struct{}
	return c.post(ctx, "/auth/register", &RegisterRequest{User: username, Y1: y1, Y2: y2}, &out)
}

// Login runs one full commit, challenge, response round and returns the
// issued session.
func (c *Client) Login(ctx context.Context, username, password string) (*VerifyResponse, error) {
	x := DeriveSecret(c.Params, username, password)

	commitment, err := Commit(c.Params, c.Random)
	if err != nil {
		return nil, err
	}

	var challenge ChallengeResponse
	if err := c.post(ctx, "/auth/challenge", &ChallengeRequest{
		User: username,
		R1:   commitment.R1,
		R2:   commitment.R2,
	}, &challenge); err != nil {
		return nil, err
	}

	s, err := Respond(c.Params, commitment, challenge.C, x)
	if err != nil {
		return nil, err
	}

	var session VerifyResponse
	if err := c.post(ctx, "/auth/verify", &VerifyRequest{AuthID: challenge.AuthID, S: s}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// FetchParams retrieves the verifier's group parameters and validates them.
func (c *Client) FetchParams(ctx context.Context) (*zkp.Params, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/params", nil)
	if err != nil {
		return nil, err
	}

	var out ParamsResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	params, err := zkp.New(out.P, out.Q, out.Alpha, out.Beta)
	if err != nil {
		return nil, fmt.Errorf("verifier sent invalid parameters: %w", err)
	}
	return params, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
