// Package ai wraps the external chat-summarization collaborator. The contract
// is one JSON request/response call; failures never touch consultation state
// and there is no retry or caching here.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Summarizer turns a flattened chat transcript into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

var ErrNotConfigured = errors.New("summarizer is not configured")

type summarizeRequest struct {
	ChatHistory string `json:"chat_history"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type httpSummarizer struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPSummarizer(url, apiKey string) Summarizer {
	return &httpSummarizer{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *httpSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if s.url == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(summarizeRequest{ChatHistory: transcript})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarization call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarization call returned status %d", resp.StatusCode)
	}

	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode summary: %w", err)
	}
	return out.Summary, nil
}
