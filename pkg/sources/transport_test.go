package sources

import (
	"net/http"
	"net/url"
)

// rewriteTransport redirects every request to a test server, regardless of
// the URL the client was built with.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testHTTPClient(rawURL string) *http.Client {
	target, _ := url.Parse(rawURL)
	return &http.Client{Transport: &rewriteTransport{target: target}}
}
