package lookup

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	DefaultPageURL   = "https://sites.ipaddress.com/{host}"
	DefaultRegionID  = "tabpanel-dns-a"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	formContentType  = "application/x-www-form-urlencoded"
	maxPageBytes     = 4 << 20
)

var ipv4Pattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)

type PageOptions struct {
	URLTemplate string
	RegionID    string
	UserAgent   string
	Timeout     time.Duration
	Client      *http.Client
	Logger      *zap.Logger
}

// PageSource scrapes candidate addresses from a lookup web page.
type PageSource struct {
	opts PageOptions
}

func NewPageSource(opts PageOptions) *PageSource {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultPageURL
	}
	if opts.RegionID == "" {
		opts.RegionID = DefaultRegionID
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &PageSource{opts: opts}
}

func (s *PageSource) Lookup(ctx context.Context, hostname string) ([]string, error) {
	document, err := s.Fetch(ctx, hostname)
	if err != nil {
		return nil, err
	}
	return ExtractAddresses(document, s.opts.RegionID), nil
}

// Fetch returns the raw lookup page for hostname.
func (s *PageSource) Fetch(ctx context.Context, hostname string) (string, error) {
	target := s.pageURL(hostname)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.Wrap(err, "build lookup request")
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Content-Type", formContentType)

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch %s", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("fetch %s: unexpected status %s", target, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", errors.Wrapf(err, "read %s", target)
	}
	s.opts.Logger.Debug("lookup page fetched", zap.String("url", target), zap.Int("bytes", len(body)))
	return string(body), nil
}

func (s *PageSource) pageURL(hostname string) string {
	host := url.PathEscape(hostname)
	if !strings.Contains(s.opts.URLTemplate, "{host}") {
		return s.opts.URLTemplate + host
	}
	return strings.ReplaceAll(s.opts.URLTemplate, "{host}", host)
}

// ExtractAddresses returns the distinct IPv4-looking strings in the text of
// the element whose id is regionID. A page without that element yields none.
func ExtractAddresses(document string, regionID string) []string {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil
	}
	region := findByID(root, regionID)
	if region == nil {
		return nil
	}
	var text strings.Builder
	collectText(region, &text)
	return lo.Uniq(ipv4Pattern.FindAllString(text.String(), -1))
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
