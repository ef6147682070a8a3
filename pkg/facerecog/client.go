// Package facerecog talks to the external face recognition service. Every
// failure is folded into a result with Success false; callers never see a
// transport error.
package facerecog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sefazor/conference-backend/internal/metrics"
	"go.uber.org/zap"
)

// ServiceError is the message carried by a result when the service could not
// be reached or answered badly.
const ServiceError = "Service error"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

type KnownEncoding struct {
	UserID   uint      `json:"user_id"`
	Encoding []float64 `json:"encoding"`
}

type EncodeResult struct {
	Success  bool      `json:"success"`
	Encoding []float64 `json:"encoding,omitempty"`
	Error    string    `json:"error,omitempty"`

	// Unavailable is set by the client when the service itself failed.
	Unavailable bool `json:"-"`
}

type AuthenticateResult struct {
	Success       bool    `json:"success"`
	Authenticated bool    `json:"authenticated"`
	UserID        *uint   `json:"user_id,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	Distance      float64 `json:"distance,omitempty"`
	Error         string  `json:"error,omitempty"`

	Unavailable bool `json:"-"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient builds a client that gives up connecting after openTimeout and
// waiting for a response after readTimeout.
func NewClient(baseURL string, openTimeout, readTimeout time.Duration, log *zap.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: openTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   openTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: transport,
			Timeout:   openTimeout + readTimeout,
		},
		log: log,
	}
}

func (c *Client) Encode(ctx context.Context, imageBase64 string) EncodeResult {
	var result EncodeResult
	if err := c.post(ctx, "encode", map[string]interface{}{
		"image_base64": imageBase64,
	}, &result); err != nil {
		return EncodeResult{Success: false, Error: ServiceError, Unavailable: true}
	}
	if result.Success && len(result.Encoding) == 0 {
		return EncodeResult{Success: false, Error: "No face detected"}
	}
	return result
}

func (c *Client) Authenticate(ctx context.Context, imageBase64 string, known []KnownEncoding) AuthenticateResult {
	if known == nil {
		known = []KnownEncoding{}
	}

	var result AuthenticateResult
	if err := c.post(ctx, "authenticate", map[string]interface{}{
		"image_base64":    imageBase64,
		"known_encodings": known,
	}, &result); err != nil {
		return AuthenticateResult{Success: false, Error: ServiceError, Unavailable: true}
	}
	return result
}

func (c *Client) post(ctx context.Context, operation string, body interface{}, out interface{}) error {
	start := time.Now()
	err := c.doPost(ctx, operation, body, out)

	outcome := "success"
	if err != nil {
		outcome = "error"
		c.log.Error("Face service call failed",
			zap.String("operation", operation),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}
	metrics.RecordFaceRequest(operation, outcome, time.Since(start))
	return err
}

func (c *Client) doPost(ctx context.Context, operation string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+operation, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
