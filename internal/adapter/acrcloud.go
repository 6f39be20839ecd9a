package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"aircheck/internal/auth"
	"aircheck/internal/domain"
	"aircheck/internal/logger"
)

// providerTimestampLayout is the UTC timestamp format in provider responses
const providerTimestampLayout = "2006-01-02 15:04:05"

// compactDateLayout is the default date format for provider query parameters
const compactDateLayout = "20060102"

// ACRCloudAdapter implements domain.DetectionProvider against the ACRCloud
// broadcast-monitoring results endpoint
type ACRCloudAdapter struct {
	baseURL         string
	httpClient      *http.Client
	queryDateLayout string
	log             *logger.Logger
}

// NewACRCloudAdapter creates a new ACRCloud adapter. The bearer token is
// attached to every request via the oauth2 transport.
func NewACRCloudAdapter(baseURL, token string, timeout time.Duration) *ACRCloudAdapter {
	return &ACRCloudAdapter{
		baseURL:         baseURL,
		httpClient:      auth.NewProviderClient(token, timeout),
		queryDateLayout: compactDateLayout,
		log:             logger.GetGlobalLogger(),
	}
}

// UseDashedDates switches the query date parameter to YYYY-MM-DD for
// deployments whose endpoint rejects the compact form
func (a *ACRCloudAdapter) UseDashedDates() {
	a.queryDateLayout = domain.DateLayout
}

// FetchDetections retrieves all recognitions for a stream on a UTC calendar
// date. Elements with a missing or malformed timestamp are skipped with a
// warning; every other failure is a *domain.ProviderError that aborts the
// whole report upstream.
func (a *ACRCloudAdapter) FetchDetections(ctx context.Context, projectID, streamID string, utcDate time.Time) ([]domain.DetectionEvent, error) {
	endpoint := fmt.Sprintf("%s/api/bm-cs-projects/%s/streams/%s/results",
		a.baseURL, url.PathEscape(projectID), url.PathEscape(streamID))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := req.URL.Query()
	query.Set("date", utcDate.Format(a.queryDateLayout))
	query.Set("with_false_positive", "0")
	req.URL.RawQuery = query.Encode()

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{
			StreamID: streamID,
			Date:     utcDate.Format(domain.DateLayout),
			Detail:   err.Error(),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.ProviderError{
			StreamID:   streamID,
			Date:       utcDate.Format(domain.DateLayout),
			StatusCode: resp.StatusCode,
			Detail:     string(body),
		}
	}

	var result struct {
		Data []struct {
			Metadata struct {
				TimestampUTC string `json:"timestamp_utc"`
				CustomFiles  []struct {
					ACRID string  `json:"acrid"`
					Title string  `json:"title"`
					Score float64 `json:"score"`
				} `json:"custom_files"`
			} `json:"metadata"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &domain.ProviderError{
			StreamID: streamID,
			Date:     utcDate.Format(domain.DateLayout),
			Detail:   fmt.Sprintf("failed to decode response: %v", err),
			Err:      err,
		}
	}

	events := make([]domain.DetectionEvent, 0, len(result.Data))
	for _, item := range result.Data {
		ts, err := time.ParseInLocation(providerTimestampLayout, item.Metadata.TimestampUTC, time.UTC)
		if err != nil {
			// One bad timestamp drops one recognition, never the report
			a.log.Warn("Skipping detection with unparseable timestamp", map[string]interface{}{
				"stream_id": streamID,
				"timestamp": item.Metadata.TimestampUTC,
			})
			continue
		}

		// One raw recognition carries one entry per matched custom file
		for _, file := range item.Metadata.CustomFiles {
			events = append(events, domain.DetectionEvent{
				ACRID:    file.ACRID,
				StreamID: streamID,
				Title:    file.Title,
				Score:    file.Score,
				UTCTime:  ts,
			})
		}
	}

	return events, nil
}
