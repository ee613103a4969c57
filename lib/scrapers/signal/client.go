package signal

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"investor-parser/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://signal.nfx.com"

var investorPathRegex = regexp.MustCompile(`/investors/([^/?#]+)`)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
}

// NewClient creates a client for fetching investor profile pages.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	// this client bypasses cloudflare's bot detection
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader(
		"user-agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"+
			" (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// FetchProfile downloads the page at the given profile url, which may
// be absolute or a path relative to the client's base url.
func (c *Client) FetchProfile(ctx context.Context, profileUrl string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchProfile")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(profileUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch profile")
		return "", err
	}
	if res.StatusCode() != 200 {
		err = fmt.Errorf("fetching %q: unexpected status code %d", profileUrl, res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch profile")
		return "", err
	}
	return string(res.Body()), nil
}

// Slug pulls the investor slug out of a profile url. Empty when the
// url does not point at an investor profile.
func Slug(profileUrl string) string {
	groups := investorPathRegex.FindStringSubmatch(profileUrl)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}

// PageFileName is the canonical on-disk name for a fetched profile page
func PageFileName(slug string) string {
	return fmt.Sprintf("investors-%s.html", slug)
}

// NeedsInteractiveFetch reports whether the page serves only a teaser
// of the investment list. The full table sits behind a "See all
// investments" control that only a real browser can expand.
func NeedsInteractiveFetch(content string) bool {
	return strings.Contains(content, "See all investments")
}
