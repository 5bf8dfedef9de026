// ABOUTME: NVD CVE API 2.0 client used as the production vulnerability source.
// ABOUTME: Issues keyword searches and decodes the response envelope into source items.

package nvd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/openhomesec/VulnTrack/internal/types"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultEndpoint is the public NVD CVE API.
const DefaultEndpoint = "https://services.nvd.nist.gov/rest/json/cves/2.0"

// Client queries the NVD CVE API 2.0.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates an NVD client. An empty endpoint selects the public API.
func NewClient(endpoint string, logger *logrus.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 3, // NVD asks clients to keep concurrency low
			},
		},
		logger: logger,
	}
}

// Name returns the vulnerability source name.
func (c *Client) Name() string {
	return "nvd"
}

// response is the NVD API envelope.
type response struct {
	ResultsPerPage  int `json:"resultsPerPage"`
	StartIndex      int `json:"startIndex"`
	TotalResults    int `json:"totalResults"`
	Vulnerabilities []struct {
		Cve types.SourceItem `json:"cve"`
	} `json:"vulnerabilities"`
}

// Search queries the API with a keyword filter. Failures are returned as-is;
// the caller decides whether the run is fatal. No retries happen here.
func (c *Client) Search(ctx context.Context, keyword string) ([]types.SourceItem, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid NVD endpoint")
	}
	q := u.Query()
	q.Set("keywordSearch", keyword)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not create NVD request")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch from NVD")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("could not fetch from NVD: status code %d", res.StatusCode)
	}

	var resp response
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "could not decode response from NVD")
	}

	items := make([]types.SourceItem, len(resp.Vulnerabilities))
	for i, v := range resp.Vulnerabilities {
		items[i] = v.Cve
	}

	c.logger.WithFields(logrus.Fields{
		"keyword":       keyword,
		"total_results": resp.TotalResults,
		"returned":      len(items),
	}).Debug("NVD search completed")

	return items, nil
}
