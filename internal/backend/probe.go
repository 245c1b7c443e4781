package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
	"golang.org/x/net/html"
)

// probeBodyLimit caps how much of an index page is parsed.
const probeBodyLimit = 512 * 1024

// h5aiMarker appears in the asset paths of every h5ai index page.
const h5aiMarker = "_h5ai"

// Probe fetches the index page of server and reports whether it is up and
// serving h5ai. Probe never returns an error; failures are described in
// the returned status.
func (c *Client) Probe(ctx context.Context, server model.Server) (status model.ServerStatus) {
	status = model.ServerStatus{
		Server: server.Name,
		URL:    server.URL,
	}
	start := time.Now()
	defer func() {
		status.Latency = time.Since(start)
		status.LatencyMS = status.Latency.Milliseconds()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		status.Error = err.Error()
		return status
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		status.Error = fmt.Sprintf("failed to create request: %v", err)
		return status
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range server.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		status.Error = err.Error()
		c.logger.Debug("probe failed", "server", server.Name, "error", err)
		return status
	}
	defer resp.Body.Close()

	status.Reachable = true
	status.StatusCode = resp.StatusCode

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return status
	}

	title, h5ai, err := inspectIndexPage(io.LimitReader(resp.Body, probeBodyLimit))
	if err != nil {
		status.Error = fmt.Sprintf("failed to parse index page: %v", err)
		return status
	}
	status.Title = title
	status.H5AI = h5ai
	return status
}

// inspectIndexPage extracts the page title and looks for h5ai assets.
func inspectIndexPage(r io.Reader) (string, bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false, err
	}

	var title string
	var h5ai bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "script":
				h5ai = h5ai || strings.Contains(getAttr(n, "src"), h5aiMarker)
			case "link":
				h5ai = h5ai || strings.Contains(getAttr(n, "href"), h5aiMarker)
			case "meta":
				h5ai = h5ai || strings.Contains(strings.ToLower(getAttr(n, "content")), "h5ai")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return title, h5ai, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
