// Package ping notifies search engines about a new sitemap with a minimal HTTP/1.1 client.
//
// Requests are written by hand over a TCP (or TLS) connection so that every step of the
// exchange can be classified: socket creation, DNS lookup, connection, HTTP status and
// redirect limits each produce a distinct error kind.
package ping

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultUserAgent identifies the client to ping endpoints.
	DefaultUserAgent = "Mozilla/5.0 (compatible; SitemapCreator/1.0)"
	// DefaultTimeout bounds one request, from dial to end of body.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxRedirects is the redirect limit used when none is configured.
	DefaultMaxRedirects = 5
	// MaxBodySize caps the number of body bytes kept from a response.
	MaxBodySize = 1 << 20
	// SummaryLength caps the HTML summary length in runes.
	SummaryLength = 200
)

// Result is the outcome of pinging one endpoint: Body on success, Err otherwise.
type Result struct {
	Body        string
	Err         error
	URL         string // last URL requested
	StatusCode  int
	ContentType string
	Redirects   int
	Summary     string // title and first text of an HTML body
	Duration    time.Duration
}

// OK reports whether the ping succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Options configures a Client.
type Options struct {
	UserAgent string
	Verbose   bool
}

// DefaultOptions returns sensible defaults for pinging.
func DefaultOptions() *Options {
	return &Options{UserAgent: DefaultUserAgent}
}

// Client performs ping requests. A Client holds no per-request state and is safe for
// concurrent use.
type Client struct {
	userAgent string
	verbose   bool
}

// NewClient creates a Client.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{userAgent: ua, verbose: opts.Verbose}
}

// RequestURL builds the ping URL for targetURL: the endpoint followed by the query-escaped
// target.
func RequestURL(endpointURL, targetURL string) string {
	return endpointURL + url.QueryEscape(targetURL)
}

// Ping notifies one endpoint that targetURL changed. Redirects are followed up to
// maxRedirects times, counted for this call only. Each request in the chain gets its own
// timeout, further bounded by ctx.
func (c *Client) Ping(ctx context.Context, endpointURL, targetURL string, maxRedirects int, timeout time.Duration) Result {
	return c.Get(ctx, RequestURL(endpointURL, targetURL), maxRedirects, timeout)
}

// Get requests rawURL and follows redirects. It never returns both a body and an error.
func (c *Client) Get(ctx context.Context, rawURL string, maxRedirects int, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRedirects < 0 {
		maxRedirects = 0
	}

	start := time.Now()
	current := rawURL
	redirects := 0

	for {
		resp, err := c.roundTrip(ctx, current, timeout)
		if err != nil {
			return Result{Err: err, URL: current, Redirects: redirects, Duration: time.Since(start)}
		}

		if resp.location != "" {
			if redirects >= maxRedirects {
				return Result{
					Err:       &Error{Kind: ErrMaxRedirectsExceeded, URL: current, Code: maxRedirects},
					URL:       current,
					Redirects: redirects,
					Duration:  time.Since(start),
				}
			}
			next, err := resolveLocation(current, resp.location)
			if err != nil {
				return Result{Err: err, URL: current, Redirects: redirects, Duration: time.Since(start)}
			}
			redirects++
			if c.verbose {
				log.Printf("[ping] redirect %d/%d: %s -> %s", redirects, maxRedirects, current, next)
			}
			current = next
			continue
		}

		result := Result{
			Body:        decodeBody(resp.body, resp.contentType),
			URL:         current,
			StatusCode:  resp.status,
			ContentType: resp.contentType,
			Redirects:   redirects,
			Duration:    time.Since(start),
		}
		if isHTML(resp.contentType) && result.Body != "" {
			if summary, err := Summarize(result.Body, SummaryLength); err == nil {
				result.Summary = summary
			}
		}
		return result
	}
}

type response struct {
	status      int
	location    string
	contentType string
	chunked     bool
	body        []byte
}

// roundTrip performs one request. The connection deadline is fixed at dial start plus
// timeout (or the context deadline, if earlier) and covers dial, write, headers and body.
// Cancelling ctx closes the connection.
func (c *Client) roundTrip(ctx context.Context, rawURL string, timeout time.Duration) (*response, error) {
	u, addr, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := &net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classifyDialError(rawURL, err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &Error{Kind: ErrTransport, URL: rawURL, Message: "failed to set deadline", Cause: err}
	}

	if u.Scheme == "https" {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: u.Hostname()})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, transportError(ctx, rawURL, "TLS handshake failed", err)
		}
		conn = tlsConn
	}

	if c.verbose {
		log.Printf("[ping] GET %s", rawURL)
	}

	if _, err := io.WriteString(conn, c.buildRequest(u)); err != nil {
		return nil, transportError(ctx, rawURL, "failed to write request", err)
	}

	return readResponse(ctx, rawURL, bufio.NewReader(conn))
}

// buildRequest renders the literal request for u.
func (c *Client) buildRequest(u *url.URL) string {
	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", target)
	fmt.Fprintf(&b, "Host: %s\r\n", u.Host)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", c.userAgent)
	b.WriteString("Connection: close\r\n\r\n")
	return b.String()
}

// readResponse reads headers line by line. A Location header ends the exchange as a
// redirect; a status outside the allowed set ends it as an HTTP error. Otherwise the rest
// of the stream is the body.
func readResponse(ctx context.Context, rawURL string, r *bufio.Reader) (*response, error) {
	resp := &response{}
	first := true

	for {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, &Error{Kind: ErrTransport, URL: rawURL, Message: "connection closed before end of headers", Cause: err}
			}
			return nil, transportError(ctx, rawURL, "failed to read headers", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		if first && strings.HasPrefix(line, "HTTP/") {
			first = false
			code, reason, ok := parseStatus(line)
			if !ok {
				return nil, &Error{Kind: ErrTransport, URL: rawURL, Message: "malformed status line: " + line}
			}
			resp.status = code
			if !allowedStatus[code] {
				return nil, &Error{Kind: ErrHTTPError, URL: rawURL, Code: code, Message: reason}
			}
			continue
		}
		first = false

		name, value, ok := splitHeader(line)
		if !ok {
			if code, reason, ok := parseStatus(line); ok && !allowedStatus[code] {
				return nil, &Error{Kind: ErrHTTPError, URL: rawURL, Code: code, Message: reason}
			}
			continue
		}

		switch name {
		case "location":
			resp.location = value
			return resp, nil
		case "content-type":
			resp.contentType = value
		case "transfer-encoding":
			resp.chunked = strings.Contains(strings.ToLower(value), "chunked")
		}
	}

	var body io.Reader = r
	if resp.chunked {
		body = httputil.NewChunkedReader(r)
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxBodySize))
	if err != nil {
		return nil, transportError(ctx, rawURL, "failed to read body", err)
	}
	resp.body = data
	return resp, nil
}

// transportError classifies a failure after the connection was established.
func transportError(ctx context.Context, rawURL, msg string, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &Error{Kind: ErrTransport, URL: rawURL, Message: msg + ": " + ctxErr.Error(), Cause: err}
	}
	return &Error{Kind: ErrTransport, URL: rawURL, Message: msg, Cause: err}
}

// parseTarget validates rawURL and returns it with its dial address.
func parseTarget(rawURL string) (*url.URL, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", &Error{Kind: ErrInvalidURL, URL: rawURL, Message: err.Error(), Cause: err}
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, "", &Error{Kind: ErrInvalidURL, URL: rawURL, Message: "missing host"}
	}

	port := u.Port()
	switch u.Scheme {
	case "http":
		if port == "" {
			port = "80"
		}
	case "https":
		if port == "" {
			port = "443"
		}
	default:
		return nil, "", &Error{Kind: ErrInvalidURL, URL: rawURL, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	return u, net.JoinHostPort(u.Hostname(), port), nil
}

// resolveLocation resolves a Location value against the URL that returned it.
func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", &Error{Kind: ErrInvalidURL, URL: current, Message: err.Error(), Cause: err}
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", &Error{Kind: ErrInvalidURL, URL: current, Message: "invalid Location " + location, Cause: err}
	}
	return base.ResolveReference(ref).String(), nil
}
