package reddit

import "encoding/json"

// Fullname kind tags used by the API to identify resource types.
const (
	KindComment   = "t1"
	KindUser      = "t2"
	KindPost      = "t3"
	KindSubreddit = "t5"
)

// SubredditFragment is the community portion embedded in every item.
type SubredditFragment struct {
	// Subreddit is the community's display name, e.g. "patientgamers".
	Subreddit string `json:"subreddit"`
	// SubredditID is the prefixed community id, e.g. "t5_2t3ad".
	SubredditID string `json:"subreddit_id"`
	// SubredditType is the visibility kind (public, private, restricted, ...).
	SubredditType string `json:"subreddit_type"`
}

// UserFragment is the author portion embedded in every item. AuthorFullname
// is absent when the account was deleted, leaving only a display name that
// cannot be resolved to an id.
type UserFragment struct {
	Author         string `json:"author"`
	AuthorFullname string `json:"author_fullname"`
}

// HasAuthor reports whether the item still carries a recoverable author id.
func (u UserFragment) HasAuthor() bool { return u.AuthorFullname != "" }

// AuthorIdentity returns the author display name and prefixed id.
func (u *UserFragment) AuthorIdentity() (username, fullname string) {
	return u.Author, u.AuthorFullname
}

// SetAuthorIdentity backfills missing author fields. Items that already carry
// authorship are left untouched; backfill fills holes, it never fixes data.
func (u *UserFragment) SetAuthorIdentity(username, fullname string) {
	if u.AuthorFullname != "" {
		return
	}
	u.Author = username
	u.AuthorFullname = fullname
}

// Authored is implemented by items whose author identity can be read and
// backfilled.
type Authored interface {
	HasAuthor() bool
	AuthorIdentity() (username, fullname string)
	SetAuthorIdentity(username, fullname string)
}

// Comment is a single comment resource. Only the fields the archiver stores
// are decoded; the API sends dozens more.
type Comment struct {
	SubredditFragment
	UserFragment

	// ID is the bare (unprefixed) comment id.
	ID string `json:"id"`
	// Body is the comment text as markdown.
	Body string `json:"body"`
	// Score is the current vote total.
	Score int64 `json:"score"`
	// Created is the epoch timestamp, fractional per the API.
	Created float64 `json:"created"`
	// Permalink is the site-relative path to the comment.
	Permalink string `json:"permalink"`
	// IsSubmitter is true when the commenter authored the parent post.
	IsSubmitter bool `json:"is_submitter"`
	// Controversiality is the API's controversial-comment flag.
	Controversiality int64 `json:"controversiality"`
	// TotalAwards is the number of awards the comment received.
	TotalAwards int64 `json:"total_awards_received"`
}

// Post is a single submission resource.
type Post struct {
	SubredditFragment
	UserFragment

	// ID is the bare (unprefixed) post id.
	ID string `json:"id"`
	// Title is the post title.
	Title string `json:"title"`
	// Selftext is the markdown body; empty for link posts.
	Selftext string `json:"selftext"`
	// URL is the post target: an external link, or a reddit.com URL for
	// self posts and crossposts.
	URL string `json:"url"`
	// Permalink is the site-relative path to the post.
	Permalink string `json:"permalink"`
	// Score is the current vote total.
	Score int64 `json:"score"`
	// UpvoteRatio is the fraction of votes that were upvotes.
	UpvoteRatio float64 `json:"upvote_ratio"`
	// NumComments is the reply count.
	NumComments int64 `json:"num_comments"`
	// TotalAwards is the number of awards the post received.
	TotalAwards int64 `json:"total_awards_received"`
	// Created is the epoch timestamp, fractional per the API.
	Created float64 `json:"created"`
}

// thing is the kind-tagged wrapper around every resource in a listing.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listingEnvelope is the paginated collection shape returned by the listing
// and info endpoints.
type listingEnvelope struct {
	Data struct {
		// After is the opaque cursor for the next page; empty on the last.
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// aboutEnvelope is the shape returned by the user about endpoint.
type aboutEnvelope struct {
	Data struct {
		// ID is the bare (unprefixed) account id.
		ID string `json:"id"`
	} `json:"data"`
}
