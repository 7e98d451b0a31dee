package calc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/xeipuuv/gojsonschema"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
)

const (
	defaultBaseURL = "http://localhost:3000"
	datetimeLayout = "2006-01-02T15:04:05-07:00"
	maxBodyBytes   = 1 << 20
)

// Client talks to the BaZi calculation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	envelope   *gojsonschema.Schema
	chart      *gojsonschema.Schema
	logger     *slog.Logger
}

// NewClient builds a calculation client; timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	envelope, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	chart, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(chartSchema))
	if err != nil {
		return nil, fmt.Errorf("compile chart schema: %w", err)
	}
	return &Client{
		baseURL:    strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: timeout},
		envelope:   envelope,
		chart:      chart,
		logger:     logger.With("component", "calc.client"),
	}, nil
}

type chartRequest struct {
	SolarDatetime string `json:"solarDatetime"`
	Gender        int    `json:"gender"`
}

type chartResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

// Calculate casts the four pillars for the request.
func (c *Client) Calculate(ctx context.Context, req profile.Request) (profile.Profile, error) {
	payload, err := json.Marshal(chartRequest{
		SolarDatetime: SolarDatetime(req),
		Gender:        genderCode(req.Gender),
	})
	if err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "failed to encode calculation request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bazi", bytes.NewReader(payload))
	if err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "failed to build calculation request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "calculation service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "failed to read calculation response", err)
	}
	if resp.StatusCode >= 300 {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation,
			fmt.Sprintf("calculation service returned status %d", resp.StatusCode),
			fmt.Errorf("body=%s", truncate(string(body), 512)))
	}

	if err := validate(c.envelope, body); err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "calculation response malformed", err)
	}
	var envelope chartResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "failed to decode calculation response", err)
	}
	if !envelope.Success {
		reason := "unknown error"
		if envelope.Error != nil && *envelope.Error != "" {
			reason = *envelope.Error
		}
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "calculation service rejected the request", fmt.Errorf("%s", reason))
	}
	if err := validate(c.chart, envelope.Data); err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "calculation chart malformed", err)
	}

	var data chartData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "failed to decode calculation chart", err)
	}
	prof, err := data.toProfile()
	if err != nil {
		return profile.Profile{}, apperrors.Wrap(apperrors.CodeCalculation, "calculation chart incomplete", err)
	}
	c.logger.Debug("chart calculated", "pillars", prof.PillarsString(), "timezone", req.Timezone)
	return prof, nil
}

// Health probes the service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calculation health request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calculation service unhealthy: status=%d", resp.StatusCode)
	}
	return nil
}

// SolarDatetime renders the local birth time with the UTC offset in force at that instant.
func SolarDatetime(req profile.Request) string {
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil || req.Timezone == "" {
		loc = time.UTC
	}
	local := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), req.Hour, req.Minute, 0, 0, loc)
	return local.Format(datetimeLayout)
}

func genderCode(g birth.Gender) int {
	if g == birth.GenderFemale {
		return 0
	}
	return 1
}

func validate(schema *gojsonschema.Schema, doc []byte) error {
	if len(doc) == 0 {
		return fmt.Errorf("empty document")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("schema validation failed: %v", errs)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
