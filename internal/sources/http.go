package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/httpx"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"
)

// HTTPClient queries a remote authoritative source over HTTP. The source
// exposes one document per college; the client picks out the queried field.
type HTTPClient struct {
	name        string
	baseURL     string
	reliability float64
	fields      map[models.FieldType]bool
	client      *httpx.Client
	logger      logger.Logger
}

type HTTPClientOptions struct {
	Name        string
	BaseURL     string
	Reliability float64
	FieldTypes  []models.FieldType
	Timeout     time.Duration
}

func NewHTTPClient(opts HTTPClientOptions, log logger.Logger) *HTTPClient {
	fields := make(map[models.FieldType]bool, len(opts.FieldTypes))
	for _, ft := range opts.FieldTypes {
		fields[ft] = true
	}
	return &HTTPClient{
		name:        opts.Name,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		reliability: opts.Reliability,
		fields:      fields,
		client:      httpx.NewClient(opts.Timeout),
		logger: log.WithFields(map[string]interface{}{"source": opts.Name}),
	}
}

func (h *HTTPClient) Name() string { return h.name }

func (h *HTTPClient) Reliability() float64 { return h.reliability }

func (h *HTTPClient) Covers(ft models.FieldType) bool { return h.fields[ft] }

func (h *HTTPClient) Query(ctx context.Context, ft models.FieldType, collegeID string) (*Record, error) {
	if !h.fields[ft] {
		return nil, nil
	}

	url := fmt.Sprintf("%s/colleges/%s", h.baseURL, collegeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(h.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, apperrors.NewSourceTimeoutError(h.name)
		}
		return nil, apperrors.NewSourceUnavailableError(h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewSourceUnavailableError(h.name, fmt.Errorf("source returned %d", resp.StatusCode))
	}

	var doc struct {
		CollegeID string                 `json:"collegeId"`
		Fields    map[string]interface{} `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.NewSourceMalformedError(h.name, err)
	}

	value, ok := doc.Fields[string(ft)]
	if !ok {
		return nil, nil
	}

	return &Record{
		Source:      h.name,
		CollegeID:   collegeID,
		FieldType:   ft,
		Value:       value,
		Reliability: h.reliability,
		RetrievedAt: time.Now().UTC(),
	}, nil
}
