// Package extract calls the external report-extraction service. The call is
// best-effort: any failure degrades to an unprocessed result instead of
// propagating an error to the upload path.
package extract

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Result holds whatever the extraction service produced. Processed is false
// when the call failed or the response could not be parsed.
type Result struct {
	Fields    map[string]interface{} `json:"fields,omitempty"`
	RawText   string                 `json:"raw_text,omitempty"`
	Processed bool                   `json:"processed"`
}

// Extractor sends report content for structured-field extraction.
type Extractor interface {
	Extract(ctx context.Context, fileName, mimeType string, content []byte) Result
}

type apiResponse struct {
	Fields  map[string]interface{} `json:"fields"`
	RawText string                 `json:"raw_text"`
}

// Client calls the extraction API over HTTP with a bounded timeout.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c, logger: logger}
}

// Extract posts the file to the extraction endpoint. Timeouts, transport
// errors, non-2xx statuses, and parse failures all return an unprocessed
// result with a failure marker in RawText.
func (c *Client) Extract(ctx context.Context, fileName, mimeType string, content []byte) Result {
	var parsed apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"file_name": fileName,
			"mime_type": mimeType,
			"content":   base64.StdEncoding.EncodeToString(content),
		}).
		SetResult(&parsed).
		Post("/v1/extract")

	if err != nil {
		c.logger.Warn().Err(err).Str("file", fileName).Msg("extraction call failed")
		return Result{RawText: "extraction failed", Processed: false}
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode()).Str("file", fileName).
			Msg("extraction service returned non-OK status")
		return Result{RawText: "extraction failed", Processed: false}
	}
	if len(parsed.Fields) == 0 && parsed.RawText == "" {
		return Result{RawText: "extraction returned no content", Processed: false}
	}

	return Result{Fields: parsed.Fields, RawText: parsed.RawText, Processed: true}
}

// Disabled is an Extractor used when no extraction API is configured; every
// call returns an unprocessed result.
type Disabled struct{}

func (Disabled) Extract(_ context.Context, _, _ string, _ []byte) Result {
	return Result{Processed: false}
}
