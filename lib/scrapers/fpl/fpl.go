// Package fpl implements an authenticated client for the
// fantasy.premierleague.com web app: logging in, reading squad and
// player data and submitting transfers and lineups.
package fpl

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/fpl")

var LoginFailed = fmt.Errorf("failed to login to fantasy.premierleague.com")

// StatusError is a non-2xx response from the upstream service. It is
// surfaced to the caller with status and body and never retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

func statusErr(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{StatusCode: res.StatusCode(), Body: res.String()}
}

// Session holds the identifiers derived from a successful login. It is
// immutable and must be passed explicitly into every call that submits
// on behalf of the logged in entry; two clients never share one.
type Session struct {
	EntryID   int64
	NextEvent int
	Deadline  time.Time
}

type Client struct {
	http    *resty.Client
	users   *url.URL
	fantasy *url.URL
}

type ClientOptions struct {
	// defaults to https://users.premierleague.com
	UsersBaseUrl string
	// defaults to https://fantasy.premierleague.com
	FantasyBaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.UsersBaseUrl == "" {
		opts.UsersBaseUrl = "https://users.premierleague.com"
	}
	if opts.FantasyBaseUrl == "" {
		opts.FantasyBaseUrl = "https://fantasy.premierleague.com"
	}

	users, err := url.Parse(opts.UsersBaseUrl)
	if err != nil {
		return nil, err
	}
	fantasy, err := url.Parse(opts.FantasyBaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		users.Hostname(),
		fantasy.Hostname(),
	))
	// the upstream specifies no timeout semantics, 30s is a
	// conservative request-level bound
	client.SetTimeout(time.Second * 30)

	instrumentHttp(client)

	return &Client{
		http:    client,
		users:   users,
		fantasy: fantasy,
	}, nil
}

// csrfToken returns the csrftoken cookie currently held for the given
// host, or "".
func (c *Client) csrfToken(host *url.URL) string {
	for _, cookie := range c.http.GetClient().Jar.Cookies(host) {
		if cookie.Name == "csrftoken" {
			return cookie.Value
		}
	}
	return ""
}

// Login authenticates against users.premierleague.com and derives the
// session identifiers from the bootstrap payload. A rejected login is
// an error, callers must never proceed with an unauthenticated session.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginUrl := c.users.JoinPath("/accounts/login/").String()

	// prime the csrftoken cookie
	res, err := c.http.R().
		SetContext(ctx).
		Get(loginUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return Session{}, err
	}

	csrf := c.csrfToken(c.users)
	if csrf == "" {
		// some deployments only carry the token as a hidden form input
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			span.SetStatus(codes.Error, "failed to parse login page html")
			return Session{}, err
		}
		csrf = doc.Find("input[name=csrfmiddlewaretoken]").AttrOr("value", "")
	}
	if csrf == "" {
		span.SetStatus(codes.Error, "failed to find csrf token")
		return Session{}, fmt.Errorf("could not find csrf token on login page")
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"csrfmiddlewaretoken": csrf,
			"login":               username,
			"password":            password,
			"app":                 "plusers",
			"redirect_uri":        c.users.String() + "/",
		}).
		Post(loginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return Session{}, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "login rejected")
		return Session{}, fmt.Errorf("%w: %s", LoginFailed, statusErr(res))
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil &&
		res.RawResponse.Request.URL.Query().Get("state") == "fail" {
		span.SetStatus(codes.Error, "login redirected to failure state")
		return Session{}, LoginFailed
	}

	// fetch the fantasy root to pick up its cookies
	_, err = c.http.R().
		SetContext(ctx).
		Get(c.fantasy.String() + "/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch fantasy root after login")
		return Session{}, err
	}

	dynamic, err := c.getBootstrapDynamic(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch bootstrap data after login")
		return Session{}, err
	}
	if dynamic.Entry.ID == 0 {
		span.SetStatus(codes.Error, "bootstrap data carries no entry, session is unauthenticated")
		return Session{}, LoginFailed
	}

	deadline, err := dynamic.nextDeadline()
	if err != nil {
		return Session{}, err
	}

	return Session{
		EntryID:   dynamic.Entry.ID,
		NextEvent: dynamic.NextEvent,
		Deadline:  deadline,
	}, nil
}
