package models

// UserRow is a row in the 'users' table. The id is the bare (unprefixed)
// account id, which is what item records reference.
type UserRow struct {
	ID       string `gorm:"column:id;primaryKey"`
	Username string `gorm:"column:username"`
}

// TableName overrides the table name for UserRow.
func (UserRow) TableName() string {
	return "users"
}

// SubredditRow is a row in the 'subreddits' table. The id is the bare
// (unprefixed) community id.
type SubredditRow struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
	Type string `gorm:"column:type"`
}

// TableName overrides the table name for SubredditRow.
func (SubredditRow) TableName() string {
	return "subreddits"
}

// CommentRow is a row in the 'comments' (or 'saved_comments') table. No
// TableName method: the destination varies, so writers pass
// ItemKind.TableName explicitly.
type CommentRow struct {
	ID               string `gorm:"column:id;primaryKey"`
	Timestamp        int64  `gorm:"column:timestamp"`
	Score            int64  `gorm:"column:score"`
	Text             string `gorm:"column:text"`
	User             string `gorm:"column:user"`
	IsSubmitter      bool   `gorm:"column:is_submitter"`
	Subreddit        string `gorm:"column:subreddit"`
	Permalink        string `gorm:"column:permalink"`
	Controversiality int64  `gorm:"column:controversiality"`
	NumAwards        int64  `gorm:"column:num_awards"`
}

// PostRow is a row in the 'posts' (or 'saved_posts') table.
type PostRow struct {
	ID          string  `gorm:"column:id;primaryKey"`
	Timestamp   int64   `gorm:"column:timestamp"`
	Score       int64   `gorm:"column:score"`
	Title       string  `gorm:"column:title"`
	Text        string  `gorm:"column:text"`
	ExternalURL string  `gorm:"column:external_url"`
	User        string  `gorm:"column:user"`
	Subreddit   string  `gorm:"column:subreddit"`
	Permalink   string  `gorm:"column:permalink"`
	UpvoteRatio float64 `gorm:"column:upvote_ratio"`
	NumComments int64   `gorm:"column:num_comments"`
	NumAwards   int64   `gorm:"column:num_awards"`
	IsRemoved   bool    `gorm:"column:is_removed"`
}
