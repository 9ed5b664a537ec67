package httpclient

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewBrowserClient creates a resty client that presents itself as a desktop browser
// and follows at most one redirect hop. A second redirect is not followed; the 3xx
// response is returned to the caller instead.
func NewBrowserClient(userAgent string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "de-DE,de;q=0.9,en;q=0.8").
		SetRedirectPolicy(OneHopRedirectPolicy())
}

// OneHopRedirectPolicy allows the initial request plus a single redirect
func OneHopRedirectPolicy() resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if len(via) > 1 {
			return http.ErrUseLastResponse
		}
		// Carry the browser headers across hosts
		for key, values := range via[0].Header {
			if _, ok := req.Header[key]; !ok {
				req.Header[key] = values
			}
		}
		return nil
	})
}
