package definition

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/model"
)

const (
	// DefaultBaseURL is the public APOD endpoint.
	DefaultBaseURL = "https://api.nasa.gov/planetary/apod"
	// DemoAPIKey is the rate-limited public key used when none is configured.
	DemoAPIKey = "DEMO_KEY"
	// APIKeyEnv is the environment variable holding the API key.
	APIKeyEnv = "NASA_API_KEY"
)

// Endpoint builds definition URLs of the form <base>?date=<YYYY-MM-DD>&api_key=<key>.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

// NewEndpoint returns an endpoint for baseURL. An empty baseURL selects
// DefaultBaseURL and an empty apiKey is resolved through ResolveAPIKey.
func NewEndpoint(baseURL, apiKey string) Endpoint {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Endpoint{BaseURL: baseURL, APIKey: ResolveAPIKey(apiKey)}
}

// ResolveAPIKey returns the NASA_API_KEY environment variable when set,
// otherwise configured, otherwise DemoAPIKey. A missing key is not an error.
func ResolveAPIKey(configured string) string {
	if env := strings.TrimSpace(os.Getenv(APIKeyEnv)); env != "" {
		return env
	}
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	return DemoAPIKey
}

// URLFor returns the definition URL for date.
func (e Endpoint) URLFor(date model.DateKey) (string, error) {
	u, err := url.Parse(e.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", apoderrors.ErrInvalidBaseURL, e.BaseURL)
	}
	key := e.APIKey
	if key == "" {
		key = DemoAPIKey
	}

	q := u.Query()
	q.Set("date", date.String())
	q.Set("api_key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
