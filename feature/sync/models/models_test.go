package models_test

import (
	"testing"

	"reddit-archiver/feature/sync/models"

	"github.com/stretchr/testify/assert"
)

func TestItemKind(t *testing.T) {
	t.Run("Comments", func(t *testing.T) {
		k := models.KindComments
		assert.Equal(t, "t1", k.TypePrefix())
		assert.Equal(t, "comments", k.TableName(false))
		assert.Equal(t, "saved_comments", k.TableName(true))
		assert.Equal(t, "comments.csv", k.ExportFilename(false))
		assert.Equal(t, "saved_comments.csv", k.ExportFilename(true))
		assert.Equal(t, "t1_jj0ti6f", k.Fullname("jj0ti6f"))
	})

	t.Run("Posts", func(t *testing.T) {
		k := models.KindPosts
		assert.Equal(t, "t3", k.TypePrefix())
		assert.Equal(t, "posts", k.TableName(false))
		assert.Equal(t, "saved_posts", k.TableName(true))
		assert.Equal(t, "t3_uypaav", k.Fullname("uypaav"))
	})

	t.Run("FullnameKeepsExistingPrefix", func(t *testing.T) {
		assert.Equal(t, "t3_uypaav", models.KindComments.Fullname("t3_uypaav"))
	})

	t.Run("RowTables", func(t *testing.T) {
		assert.Equal(t, "users", models.UserRow{}.TableName())
		assert.Equal(t, "subreddits", models.SubredditRow{}.TableName())
	})
}
