package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type TurnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
	Challenge  string   `json:"challenge_ts"`
	Action     string   `json:"action"`
}

type TurnstileVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func NewTurnstileVerifier(secret, verifyURL string, timeout time.Duration) *TurnstileVerifier {
	return &TurnstileVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (v *TurnstileVerifier) Enabled() bool {
	return v.secret != ""
}

// Verify checks if the provided token is valid. Every token passes while no
// secret is configured.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if !v.Enabled() {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Add("secret", v.secret)
	form.Add("response", token)
	if remoteIP != "" {
		form.Add("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("turnstile verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("turnstile verify: unexpected status %d", resp.StatusCode)
	}

	var result TurnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("turnstile verify: %w", err)
	}
	return result.Success, nil
}
