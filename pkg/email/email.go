// Package email sends rendered notifications through an HTTP mail relay.
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service is the outbound delivery port consumed by the dispatch worker.
type Service interface {
	Send(ctx context.Context, recipient, subject, htmlBody, attachmentName string, attachment []byte) error
}

type attachmentPayload struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"content_base64"`
}

type sendPayload struct {
	FromAlias   string              `json:"from_alias"`
	ToAddr      string              `json:"to_addr"`
	Subject     string              `json:"subject"`
	HTMLBody    string              `json:"html_body"`
	Attachments []attachmentPayload `json:"attachments"`
}

// HTTPService posts messages to a mail relay with bearer authentication.
type HTTPService struct {
	client *http.Client
	apiURL string
	apiKey string
}

func NewHTTPService(apiURL, apiKey string) *HTTPService {
	return &HTTPService{
		client: &http.Client{Timeout: 15 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

func (s *HTTPService) Send(ctx context.Context, recipient, subject, htmlBody, attachmentName string, attachment []byte) error {
	payload := sendPayload{
		FromAlias:   "default",
		ToAddr:      recipient,
		Subject:     subject,
		HTMLBody:    htmlBody,
		Attachments: []attachmentPayload{},
	}
	if attachmentName != "" && len(attachment) > 0 {
		payload.Attachments = append(payload.Attachments, attachmentPayload{
			Filename:      attachmentName,
			ContentBase64: base64.StdEncoding.EncodeToString(attachment),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email service connection error: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("email service failed: status %d, body %s", res.StatusCode, text)
	}
	return nil
}
