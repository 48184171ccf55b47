package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// MaxPageSize is the hard cap the listing and info endpoints place on
// records per request.
const MaxPageSize = 100

// largeBatchThreshold is the id-set size beyond which LookupByIDs sleeps
// between chunks to stay under the request-rate ceiling.
const largeBatchThreshold = 10_000

// interChunkDelay is the pre-emptive pause between chunks of a large batch.
const interChunkDelay = time.Second

// Client talks to the public Reddit JSON API. All calls are sequential: the
// API enforces a strict request-rate ceiling, so concurrent fan-out would
// only trigger more rate-limiting.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	// Injection points so tests can run without real sleeps.
	sleep      func(time.Duration)
	newBackOff func() backoff.BackOff
}

// NewClient creates an API client. Zero config fields fall back to the
// documented defaults.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.reddit.com"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "reddit-archiver"
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}

	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: 30 * time.Second},
		log:        log,
		sleep:      time.Sleep,
		newBackOff: newRetryPolicy,
	}
}

// UserComments fetches up to MaxPages of the account's comment history.
// When the API rate-limits mid-listing, the comments collected so far are
// returned together with the *RateLimitError.
func (c *Client) UserComments(ctx context.Context, username string) ([]*Comment, error) {
	things, listErr := c.listUser(ctx, username, "comments")

	comments := make([]*Comment, 0, len(things))
	for _, th := range things {
		var comment Comment
		if err := json.Unmarshal(th.Data, &comment); err != nil {
			return comments, fmt.Errorf("failed to decode comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	return comments, listErr
}

// UserPosts fetches up to MaxPages of the account's submission history, with
// the same partial-result semantics as UserComments.
func (c *Client) UserPosts(ctx context.Context, username string) ([]*Post, error) {
	things, listErr := c.listUser(ctx, username, "submitted")

	posts := make([]*Post, 0, len(things))
	for _, th := range things {
		var post Post
		if err := json.Unmarshal(th.Data, &post); err != nil {
			return posts, fmt.Errorf("failed to decode post: %w", err)
		}
		posts = append(posts, &post)
	}

	return posts, listErr
}

// LookupByIDs hydrates full records for prefixed identifiers (t1_/t3_),
// issuing one batch request per chunk of PageSize ids and concatenating the
// results in input order. Chunks are retried with exponential backoff; when
// a chunk keeps failing, everything collected so far is returned with a
// *PartialBatchError. A rate-limit refusal likewise truncates the batch.
func (c *Client) LookupByIDs(ctx context.Context, ids []string) ([]*Comment, []*Post, error) {
	var comments []*Comment
	var posts []*Post

	throttled := len(ids) > largeBatchThreshold
	for start := 0; start < len(ids); start += c.cfg.PageSize {
		end := min(start+c.cfg.PageSize, len(ids))

		if throttled && start > 0 {
			c.sleep(interChunkDelay)
		}

		things, err := c.lookupChunk(ctx, ids[start:end])
		if err != nil {
			fetched := len(comments) + len(posts)

			var apiErr *APIError
			var rateErr *RateLimitError
			if errors.As(err, &apiErr) || errors.As(err, &rateErr) {
				return comments, posts, err
			}
			return comments, posts, &PartialBatchError{Fetched: fetched, Err: err}
		}

		for _, th := range things {
			switch th.Kind {
			case KindComment:
				var comment Comment
				if err := json.Unmarshal(th.Data, &comment); err != nil {
					return comments, posts, fmt.Errorf("failed to decode comment: %w", err)
				}
				comments = append(comments, &comment)
			case KindPost:
				var post Post
				if err := json.Unmarshal(th.Data, &post); err != nil {
					return comments, posts, fmt.Errorf("failed to decode post: %w", err)
				}
				posts = append(posts, &post)
			}
		}
	}

	return comments, posts, nil
}

// UserID resolves a username to its bare (unprefixed) account id via the
// about endpoint.
func (c *Client) UserID(ctx context.Context, username string) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/user/%s/about.json", username), nil)
	if err != nil {
		return "", err
	}

	var envelope aboutEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("failed to decode about response: %w", err)
	}
	if envelope.Data.ID == "" {
		return "", &APIError{Code: http.StatusNotFound, Message: "no account id for " + username}
	}

	return envelope.Data.ID, nil
}

// listUser follows the server-supplied cursor through one listing resource.
// It stops on a short page or after MaxPages, whichever comes first, and
// returns whatever was collected alongside any error.
func (c *Client) listUser(ctx context.Context, username, resource string) ([]thing, error) {
	var collected []thing

	after := ""
	for page := 0; page < c.cfg.MaxPages; page++ {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.cfg.PageSize))
		if after != "" {
			params.Set("after", after)
		}

		body, err := c.get(ctx, fmt.Sprintf("/user/%s/%s.json", username, resource), params)
		if err != nil {
			return collected, err
		}

		var envelope listingEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return collected, fmt.Errorf("failed to decode %s listing: %w", resource, err)
		}

		collected = append(collected, envelope.Data.Children...)
		after = envelope.Data.After

		if len(envelope.Data.Children) < c.cfg.PageSize {
			break
		}
	}

	return collected, nil
}

// lookupChunk fetches one /api/info batch, retrying transient failures with
// the configured backoff. API-reported errors are permanent.
func (c *Client) lookupChunk(ctx context.Context, chunk []string) ([]thing, error) {
	var things []thing

	operation := func() error {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.cfg.PageSize))
		params.Set("id", strings.Join(chunk, ","))

		body, err := c.get(ctx, "/api/info.json", params)
		if err != nil {
			var apiErr *APIError
			var rateErr *RateLimitError
			if errors.As(err, &apiErr) || errors.As(err, &rateErr) {
				return backoff.Permanent(err)
			}
			c.log.Debug("info lookup attempt failed, retrying", zap.Error(err))
			return err
		}

		var envelope listingEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("failed to decode info response: %w", err)
		}

		things = envelope.Data.Children
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, err
	}

	return things, nil
}

// get issues one request and surfaces API-reported failures as typed errors.
// Reddit reports errors in the body even on some 200 responses, so the
// payload is probed before the caller decodes its expected shape.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Error   int    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if probe.Error != 0 {
		return nil, errorFromResponse(probe.Error, probe.Message, resp.Header)
	}

	return body, nil
}

// errorFromResponse maps an API error payload onto the error taxonomy. 429
// carries its rate-limit window in response headers.
func errorFromResponse(code int, message string, header http.Header) error {
	if code == http.StatusTooManyRequests {
		return &RateLimitError{
			Used:              headerInt(header, "x-ratelimit-used"),
			Remaining:         headerInt(header, "x-ratelimit-remaining"),
			ResetAfterSeconds: headerInt(header, "x-ratelimit-reset"),
		}
	}
	return &APIError{Code: code, Message: message}
}

// headerInt parses a numeric header value; Reddit formats some of these as
// floats ("596.0").
func headerInt(h http.Header, key string) int {
	v, err := strconv.ParseFloat(h.Get(key), 64)
	if err != nil {
		return 0
	}
	return int(v)
}
