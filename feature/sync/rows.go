package sync

import (
	"strings"

	"reddit-archiver/core/reddit"
	"reddit-archiver/feature/sync/models"
)

const (
	// siteRoot anchors stored permalinks. old.reddit.com keeps the classic
	// interface working regardless of redesigns.
	siteRoot = "https://old.reddit.com"
	// commentContext makes a comment permalink show surrounding discussion.
	commentContext = "?context=10"
	// removedSentinel is the body the API substitutes for moderator-removed
	// post text.
	removedSentinel = "[removed]"
)

// commentBatch converts fetched comments into the rows one write needs:
// the authors, the communities, and the comments themselves. Unattributable
// comments contribute no rows at all.
func commentBatch(comments []*reddit.Comment) ([]models.UserRow, []models.SubredditRow, []models.CommentRow) {
	var users []models.UserRow
	var subreddits []models.SubredditRow
	var rows []models.CommentRow

	for _, c := range comments {
		row := commentRow(c)
		if row == nil {
			continue
		}
		username, fullname := c.AuthorIdentity()
		users = append(users, userRow(Identity{Username: username, Fullname: fullname}))
		subreddits = append(subreddits, subredditRow(c.SubredditFragment))
		rows = append(rows, *row)
	}

	return users, subreddits, rows
}

// postBatch is commentBatch for posts.
func postBatch(posts []*reddit.Post) ([]models.UserRow, []models.SubredditRow, []models.PostRow) {
	var users []models.UserRow
	var subreddits []models.SubredditRow
	var rows []models.PostRow

	for _, p := range posts {
		row := postRow(p)
		if row == nil {
			continue
		}
		username, fullname := p.AuthorIdentity()
		users = append(users, userRow(Identity{Username: username, Fullname: fullname}))
		subreddits = append(subreddits, subredditRow(p.SubredditFragment))
		rows = append(rows, *row)
	}

	return users, subreddits, rows
}

// stripTypePrefix drops a fullname kind tag ("t5_2t3ad" -> "2t3ad"). Bare
// ids pass through unchanged.
func stripTypePrefix(id string) string {
	if len(id) > 3 && id[2] == '_' {
		return id[3:]
	}
	return id
}

// userRow builds the row for an author identity. The stored id is bare; the
// t2_ prefix only exists on the wire.
func userRow(id Identity) models.UserRow {
	return models.UserRow{
		ID:       stripTypePrefix(id.Fullname),
		Username: id.Username,
	}
}

// subredditRow builds the row for the community an item was posted in.
func subredditRow(f reddit.SubredditFragment) models.SubredditRow {
	return models.SubredditRow{
		ID:   stripTypePrefix(f.SubredditID),
		Name: f.Subreddit,
		Type: f.SubredditType,
	}
}

// commentRow maps an API comment onto its stored shape. Comments whose
// author could not be recovered are unattributable and skipped; nil marks
// the skip.
func commentRow(c *reddit.Comment) *models.CommentRow {
	if !c.HasAuthor() {
		return nil
	}

	return &models.CommentRow{
		ID:               c.ID,
		Timestamp:        int64(c.Created),
		Score:            c.Score,
		Text:             c.Body,
		User:             stripTypePrefix(c.AuthorFullname),
		IsSubmitter:      c.IsSubmitter,
		Subreddit:        stripTypePrefix(c.SubredditID),
		Permalink:        siteRoot + c.Permalink + commentContext,
		Controversiality: c.Controversiality,
		NumAwards:        c.TotalAwards,
	}
}

// postRow maps an API post onto its stored shape, nil when unattributable.
// The target URL is only kept when it points off-site; self posts and
// crossposts link back into reddit and carry no useful external target.
func postRow(p *reddit.Post) *models.PostRow {
	if !p.HasAuthor() {
		return nil
	}

	externalURL := p.URL
	if strings.Contains(externalURL, "reddit.com") {
		externalURL = ""
	}

	return &models.PostRow{
		ID:          p.ID,
		Timestamp:   int64(p.Created),
		Score:       p.Score,
		Title:       p.Title,
		Text:        p.Selftext,
		ExternalURL: externalURL,
		User:        stripTypePrefix(p.AuthorFullname),
		Subreddit:   stripTypePrefix(p.SubredditID),
		Permalink:   siteRoot + p.Permalink,
		UpvoteRatio: p.UpvoteRatio,
		NumComments: p.NumComments,
		NumAwards:   p.TotalAwards,
		IsRemoved:   p.Selftext == removedSentinel,
	}
}
