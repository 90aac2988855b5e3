package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTTPChecker checks reachability without a browser. It follows HTTP redirects and
// the redirects a page declares in its markup (meta refresh and inline location scripts).
type HTTPChecker struct {
	client *http.Client
	url    string
	marker string
}

// NewHTTPChecker creates a checker that fetches url and looks for marker in the final address
func NewHTTPChecker(url, marker string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	return &HTTPChecker{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    url,
		marker: marker,
	}
}

// Check fetches the page and classifies where it ends up
func (c *HTTPChecker) Check(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	final := resp.Request.URL
	if !Classify(final.String(), c.marker) {
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	redirected, err := declaresRedirect(resp.Body, final, c.marker)
	if err != nil {
		return false, err
	}
	return !redirected, nil
}

// declaresRedirect reports whether the document sends the browser to the blocked page
func declaresRedirect(r io.Reader, base *url.URL, marker string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return false, fmt.Errorf("parsing HTML: %w", err)
	}

	if target := metaRefreshTarget(doc); target != "" {
		resolved := target
		if u, err := base.Parse(target); err == nil {
			resolved = u.String()
		}
		if !Classify(resolved, marker) {
			return true, nil
		}
	}

	redirected := false
	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, marker) && strings.Contains(text, "location") {
			redirected = true
			return false
		}
		return true
	})

	return redirected, nil
}

// metaRefreshTarget returns the URL of the first <meta http-equiv="refresh"> tag, if any
func metaRefreshTarget(doc *goquery.Document) string {
	var target string
	doc.Find("meta").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		equiv, _ := sel.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
			return true
		}
		content, _ := sel.Attr("content")
		target = parseRefreshContent(content)
		return target == ""
	})
	return target
}

// parseRefreshContent extracts the URL from a refresh value such as "0; url='/noaccess.php'"
func parseRefreshContent(content string) string {
	for _, part := range strings.Split(content, ";") {
		part = strings.TrimSpace(part)
		if len(part) < 4 || !strings.EqualFold(part[:4], "url=") {
			continue
		}
		return strings.Trim(strings.TrimSpace(part[4:]), `'"`)
	}
	return ""
}
