package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient points a client with test-friendly settings at a local server.
func newTestClient(t *testing.T, handler http.Handler, cfg Config) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	client := NewClient(cfg, zap.NewNop())
	client.sleep = func(time.Duration) {}
	client.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, retryMaxAttempts-1)
	}

	return client
}

func commentData(id string) map[string]any {
	return map[string]any{
		"id":                    id,
		"author":                "xavdid",
		"author_fullname":       "t2_np8mb41h",
		"subreddit":             "patientgamers",
		"subreddit_id":          "t5_2t3ad",
		"subreddit_type":        "public",
		"body":                  "Such a great game.",
		"score":                 4,
		"created":               1683327131.0,
		"permalink":             "/r/patientgamers/comments/1371yrv/replay/" + id + "/",
		"is_submitter":          false,
		"controversiality":      0,
		"total_awards_received": 0,
	}
}

func postData(id string) map[string]any {
	return map[string]any{
		"id":                    id,
		"author":                "xavdid",
		"author_fullname":       "t2_np8mb41h",
		"subreddit":             "KeybaseProofs",
		"subreddit_id":          "t5_32u6q",
		"subreddit_type":        "public",
		"title":                 "My Keybase proof",
		"selftext":              "### Keybase proof",
		"url":                   "https://www.reddit.com/r/KeybaseProofs/comments/" + id + "/",
		"permalink":             "/r/KeybaseProofs/comments/" + id + "/my_keybase_proof/",
		"score":                 1,
		"upvote_ratio":          1.0,
		"num_comments":          0,
		"total_awards_received": 0,
		"created":               1653623084.0,
	}
}

func listingBody(t *testing.T, kind, after string, children ...map[string]any) []byte {
	t.Helper()

	wrapped := make([]map[string]any, 0, len(children))
	for _, child := range children {
		wrapped = append(wrapped, map[string]any{"kind": kind, "data": child})
	}

	body, err := json.Marshal(map[string]any{
		"kind": "Listing",
		"data": map[string]any{"after": after, "children": wrapped},
	})
	require.NoError(t, err)
	return body
}

func TestUserCommentsSingleShortPage(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/user/xavdid/comments.json", r.URL.Path)
		assert.Equal(t, "reddit-archiver", r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.URL.Query().Get("raw_json"))
		w.Write(listingBody(t, KindComment, "", commentData("jj0ti6f")))
	})

	client := newTestClient(t, handler, Config{})

	comments, err := client.UserComments(context.Background(), "xavdid")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 1, requests)

	comment := comments[0]
	assert.Equal(t, "jj0ti6f", comment.ID)
	assert.Equal(t, "xavdid", comment.Author)
	assert.Equal(t, "t2_np8mb41h", comment.AuthorFullname)
	assert.Equal(t, "t5_2t3ad", comment.SubredditID)
	assert.Equal(t, int64(4), comment.Score)
	assert.False(t, comment.IsSubmitter)
}

func TestUserCommentsPaginationStopsOnShortPage(t *testing.T) {
	// Pages of sizes [2, 2, 1] with page size 2: exactly 3 requests, 5
	// records, cursor threaded through.
	pages := map[string]struct {
		after    string
		children []map[string]any
	}{
		"":    {"abc", []map[string]any{commentData("a1"), commentData("a2")}},
		"abc": {"def", []map[string]any{commentData("b1"), commentData("b2")}},
		"def": {"", []map[string]any{commentData("c1")}},
	}

	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		page, ok := pages[r.URL.Query().Get("after")]
		require.True(t, ok, "unexpected cursor %q", r.URL.Query().Get("after"))
		w.Write(listingBody(t, KindComment, page.after, page.children...))
	})

	client := newTestClient(t, handler, Config{PageSize: 2})

	comments, err := client.UserComments(context.Background(), "xavdid")
	require.NoError(t, err)
	assert.Len(t, comments, 5)
	assert.Equal(t, 3, requests)
	assert.Equal(t, "c1", comments[4].ID)
}

func TestUserCommentsPaginationStopsAtMaxPages(t *testing.T) {
	// Every page is full and the server always claims more data exists; the
	// page cap still wins.
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(listingBody(t, KindComment, fmt.Sprintf("cursor%d", requests), commentData(fmt.Sprintf("c%d", requests))))
	})

	client := newTestClient(t, handler, Config{PageSize: 1, MaxPages: 10})

	comments, err := client.UserComments(context.Background(), "xavdid")
	require.NoError(t, err)
	assert.Len(t, comments, 10)
	assert.Equal(t, 10, requests)
}

func TestUserPosts(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/xavdid/submitted.json", r.URL.Path)
		w.Write(listingBody(t, KindPost, "", postData("uypaav")))
	})

	client := newTestClient(t, handler, Config{})

	posts, err := client.UserPosts(context.Background(), "xavdid")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "uypaav", posts[0].ID)
	assert.Equal(t, "My Keybase proof", posts[0].Title)
	assert.Equal(t, 1.0, posts[0].UpvoteRatio)
}

func TestUserCommentsAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": 500, "message": "you broke reddit"}`)
	})

	client := newTestClient(t, handler, Config{})

	comments, err := client.UserComments(context.Background(), "xavdid")
	assert.Empty(t, comments)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Code)
	assert.Equal(t, "received API error from Reddit (code 500): you broke reddit", apiErr.Error())
}

func TestUserCommentsRateLimitKeepsPartial(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Write(listingBody(t, KindComment, "abc", commentData("a1")))
			return
		}
		w.Header().Set("x-ratelimit-used", "4")
		w.Header().Set("x-ratelimit-remaining", "6.0")
		w.Header().Set("x-ratelimit-reset", "20")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": 429, "message": "Too Many Requests"}`)
	})

	client := newTestClient(t, handler, Config{PageSize: 1, MaxPages: 5})

	comments, err := client.UserComments(context.Background(), "xavdid")
	assert.Len(t, comments, 1)

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 4, rateErr.Used)
	assert.Equal(t, 6, rateErr.Remaining)
	assert.Equal(t, 10, rateErr.WindowTotal())
	assert.Equal(t, 20, rateErr.ResetAfterSeconds)
	assert.Equal(t, "Used 4/10 requests (resets in 20 seconds)", rateErr.Stats())
}

func TestLookupByIDsChunksInOrder(t *testing.T) {
	var idParams []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/info.json", r.URL.Path)
		idParams = append(idParams, r.URL.Query().Get("id"))

		// Echo one child per requested id, kind derived from the prefix.
		var children []map[string]any
		for _, fullname := range splitIDs(r.URL.Query().Get("id")) {
			if strings.HasPrefix(fullname, KindPost) {
				children = append(children, map[string]any{"kind": KindPost, "data": postData(fullname[3:])})
			} else {
				children = append(children, map[string]any{"kind": KindComment, "data": commentData(fullname[3:])})
			}
		}
		body, err := json.Marshal(map[string]any{
			"kind": "Listing",
			"data": map[string]any{"after": "", "children": children},
		})
		require.NoError(t, err)
		w.Write(body)
	})

	client := newTestClient(t, handler, Config{PageSize: 2})

	comments, posts, err := client.LookupByIDs(context.Background(),
		[]string{"t1_a", "t1_b", "t1_c", "t3_d", "t3_e"})
	require.NoError(t, err)

	assert.Equal(t, []string{"t1_a,t1_b", "t1_c,t3_d", "t3_e"}, idParams)
	require.Len(t, comments, 3)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", comments[0].ID)
	assert.Equal(t, "c", comments[2].ID)
	assert.Equal(t, "e", posts[1].ID)
}

func TestLookupByIDsEmpty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingBody(t, KindComment, ""))
	})

	client := newTestClient(t, handler, Config{})

	comments, posts, err := client.LookupByIDs(context.Background(), []string{"t1_a"})
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Empty(t, posts)
}

func TestLookupByIDsThrottlesLargeBatches(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(listingBody(t, KindComment, ""))
	})

	client := newTestClient(t, handler, Config{PageSize: 100})

	var sleeps int
	client.sleep = func(d time.Duration) {
		assert.Equal(t, interChunkDelay, d)
		sleeps++
	}

	ids := make([]string, largeBatchThreshold+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("t1_%d", i)
	}

	_, _, err := client.LookupByIDs(context.Background(), ids)
	require.NoError(t, err)

	// One chunk per page of ids, with a pause before every chunk after the
	// first. At or below the threshold no pauses are taken at all.
	wantChunks := len(ids)/100 + 1
	assert.Equal(t, wantChunks, requests)
	assert.Equal(t, wantChunks-1, sleeps)

	sleeps = 0
	_, _, err = client.LookupByIDs(context.Background(), ids[:largeBatchThreshold])
	require.NoError(t, err)
	assert.Zero(t, sleeps)
}

func TestLookupByIDsRetriesTransientFailures(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			// Gateway-style HTML error page: not a JSON payload at all.
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "<html>bad gateway</html>")
			return
		}
		w.Write(listingBody(t, KindComment, "", commentData("a")))
	})

	client := newTestClient(t, handler, Config{})

	comments, _, err := client.LookupByIDs(context.Background(), []string{"t1_a"})
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, 3, requests)
}

func TestLookupByIDsReturnsPartialOnExhaustedRetries(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("id") == "t1_a" {
			w.Write(listingBody(t, KindComment, "", commentData("a")))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "nope")
	})

	client := newTestClient(t, handler, Config{PageSize: 1})

	comments, _, err := client.LookupByIDs(context.Background(), []string{"t1_a", "t1_b"})
	assert.Len(t, comments, 1)

	var partialErr *PartialBatchError
	require.ErrorAs(t, err, &partialErr)
	assert.Equal(t, 1, partialErr.Fetched)
	// 1 successful chunk + 8 attempts on the failing one.
	assert.Equal(t, 1+retryMaxAttempts, requests)
}

func TestLookupByIDsAPIErrorIsNotRetried(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"error": 404, "message": "Not Found"}`)
	})

	client := newTestClient(t, handler, Config{})

	_, _, err := client.LookupByIDs(context.Background(), []string{"t1_a"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, requests)
}

func TestUserID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/xavdid/about.json", r.URL.Path)
		fmt.Fprint(w, `{"kind": "t2", "data": {"id": "np8mb41h", "name": "xavdid"}}`)
	})

	client := newTestClient(t, handler, Config{})

	id, err := client.UserID(context.Background(), "xavdid")
	require.NoError(t, err)
	assert.Equal(t, "np8mb41h", id)
}

func TestUserIDUnknownUser(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found", "error": 404}`)
	})

	client := newTestClient(t, handler, Config{})

	_, err := client.UserID(context.Background(), "xavdid")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Code)
}

func TestSetAuthorIdentityFillsOnlyHoles(t *testing.T) {
	withAuthor := &Comment{UserFragment: UserFragment{Author: "david", AuthorFullname: "t2_def456"}}
	withoutAuthor := &Comment{}

	for _, comment := range []*Comment{withAuthor, withoutAuthor} {
		comment.SetAuthorIdentity("xavdid", "t2_abc123")
	}

	assert.Equal(t, "david", withAuthor.Author)
	assert.Equal(t, "t2_def456", withAuthor.AuthorFullname)
	assert.Equal(t, "xavdid", withoutAuthor.Author)
	assert.Equal(t, "t2_abc123", withoutAuthor.AuthorFullname)
}

func splitIDs(joined string) []string {
	var out []string
	for _, id := range strings.Split(joined, ",") {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
