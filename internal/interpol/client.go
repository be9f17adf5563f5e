package interpol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"interpol-harvester/internal/config"
	"interpol-harvester/internal/metrics"
	"interpol-harvester/internal/model"
)

// Notice colors exposed by the public API.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
)

// AgeUnset disables an age bound in a Query. Zero is a valid age.
const AgeUnset = -1

// Query is one set of search filters for the paginated search endpoint.
type Query struct {
	Page           int
	PerPage        int
	Nationality    string
	AgeMin         int
	AgeMax         int
	Sex            string
	CountryOfBirth string
	Forename       string
}

// NewQuery returns a Query with no demographic filters.
func NewQuery(page, perPage int) Query {
	return Query{Page: page, PerPage: perPage, AgeMin: AgeUnset, AgeMax: AgeUnset}
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("resultPerPage", strconv.Itoa(q.PerPage))
	if q.Nationality != "" {
		v.Set("nationality", q.Nationality)
	}
	if q.AgeMin != AgeUnset {
		v.Set("ageMin", strconv.Itoa(q.AgeMin))
	}
	if q.AgeMax != AgeUnset {
		v.Set("ageMax", strconv.Itoa(q.AgeMax))
	}
	if q.Sex != "" {
		v.Set("sexId", q.Sex)
	}
	if q.CountryOfBirth != "" {
		v.Set("country_of_birth_id", q.CountryOfBirth)
	}
	if q.Forename != "" {
		v.Set("forename", q.Forename)
	}
	return v
}

// Client talks to the public notices API. All requests share one rate
// limiter so that pagination, probes and detail hydration pace together.
type Client struct {
	cfg     config.APIConfig
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewClient(cfg config.APIConfig) *Client {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 2.0
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     slog.Default().With("component", "interpol"),
	}
}

// Search fetches one page of notices for the given color and filters.
func (c *Client) Search(ctx context.Context, color string, q Query) (model.SearchPage, error) {
	u := fmt.Sprintf("%s/notices/v1/%s?%s", strings.TrimRight(c.cfg.BaseURL, "/"), color, q.values().Encode())
	raw, err := c.getJSON(ctx, u, "search")
	if err != nil {
		return model.SearchPage{}, fmt.Errorf("search %s notices: %w", color, err)
	}
	page, err := model.DecodeSearchPage(raw)
	if err != nil {
		return model.SearchPage{}, err
	}
	metrics.PagesFetched.WithLabelValues(color).Inc()
	return page, nil
}

// Total probes how many notices match the filters, using a one-result page.
func (c *Client) Total(ctx context.Context, color string, q Query) (int, error) {
	q.Page = 1
	q.PerPage = 1
	page, err := c.Search(ctx, color, q)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// Detail fetches the full document for one notice. version is the API
// version of the detail endpoint ("v1" or "v2"). A 404 returns (nil, nil):
// notices get withdrawn between the list fetch and the hydration call.
func (c *Client) Detail(ctx context.Context, color, version, entityID string) (model.Payload, error) {
	// entity ids look like "2023/12345"; detail paths use the dashed form
	id := strings.ReplaceAll(entityID, "/", "-")
	u := fmt.Sprintf("%s/notices/%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), version, color, id)
	raw, err := c.getJSON(ctx, u, "detail")
	if err != nil {
		if isNotFound(err) {
			c.log.Debug("notice vanished before hydration", "entity_id", entityID)
			return nil, nil
		}
		return nil, fmt.Errorf("detail %s/%s: %w", color, entityID, err)
	}
	var p model.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode detail %s/%s: %w", color, entityID, err)
	}
	return p, nil
}

// statusError carries the HTTP status of a failed request.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("http %d", e.status)
	}
	return fmt.Sprintf("http %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}

func (c *Client) getJSON(ctx context.Context, rawURL, endpoint string) ([]byte, error) {
	var body []byte
	err := retry(ctx, maxInt(1, c.cfg.MaxRetries), c.cfg.Backoff, c.cfg.MaxBackoff, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &permanentError{err: err}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return &permanentError{err: err}
		}
		c.setHeaders(req)

		resp, err := c.client.Do(req)
		if err != nil {
			metrics.Requests.WithLabelValues(endpoint, "error").Inc()
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			metrics.Requests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
			se := &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(excerpt))}
			if resp.StatusCode/100 == 4 && resp.StatusCode != http.StatusTooManyRequests {
				return &permanentError{err: se}
			}
			metrics.Retries.Inc()
			return se
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		metrics.Requests.WithLabelValues(endpoint, "2xx").Inc()
		body = b
		return nil
	})
	return body, err
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Referer != "" {
		req.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
