package sync

import (
	"fmt"

	"reddit-archiver/core/database"
	"reddit-archiver/feature/sync/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxBoundParams caps the number of ids bound into one IN clause. SQLite's
// default variable limit is 999; 500 leaves headroom for the rest of the
// statement.
const maxBoundParams = 500

// Store persists fetched records. Item tables are created on demand the
// first time a batch targets them, so a comments-only archive never grows
// empty post tables.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStore creates a record store on an open database handle.
func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// Migrate creates the reference tables every item row points at.
func (s *Store) Migrate() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS subreddits (
			id TEXT PRIMARY KEY,
			name TEXT,
			type TEXT
		)`,
	}

	for _, stmt := range ddl {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to migrate reference tables: %w", err)
		}
	}

	return nil
}

// itemDDL is the base shape of an item table; columns added in later schema
// versions live in itemColumns and are attached by EnsureColumns so older
// databases upgrade in place.
func itemDDL(kind models.ItemKind, table string) string {
	if kind == models.KindPosts {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			timestamp INTEGER,
			score INTEGER,
			title TEXT,
			text TEXT,
			external_url TEXT,
			user TEXT REFERENCES users(id),
			subreddit TEXT REFERENCES subreddits(id),
			permalink TEXT,
			num_comments INTEGER
		)`, table)
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		timestamp INTEGER,
		score INTEGER,
		text TEXT,
		user TEXT REFERENCES users(id),
		subreddit TEXT REFERENCES subreddits(id),
		permalink TEXT,
		controversiality INTEGER
	)`, table)
}

// itemColumns lists the columns added after the original schema shipped.
func itemColumns(kind models.ItemKind) []database.ColumnDef {
	if kind == models.KindPosts {
		return []database.ColumnDef{
			{Name: "upvote_ratio", Type: "FLOAT"},
			{Name: "num_awards", Type: "INTEGER"},
			{Name: "is_removed", Type: "INTEGER"},
		}
	}
	return []database.ColumnDef{
		{Name: "is_submitter", Type: "INTEGER"},
		{Name: "num_awards", Type: "INTEGER"},
	}
}

// ensureItemTable creates the destination table if needed and brings its
// column set up to date.
func (s *Store) ensureItemTable(kind models.ItemKind, saved bool) error {
	table := kind.TableName(saved)

	if err := s.db.Exec(itemDDL(kind, table)).Error; err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	added, err := database.EnsureColumns(s.db, table, itemColumns(kind))
	if err != nil {
		return err
	}
	if len(added) > 0 {
		s.log.Info("upgraded table schema",
			zap.String("table", table),
			zap.Strings("added_columns", added))
	}

	return nil
}

// UnsyncedIDs filters candidate bare ids down to the ones not yet present in
// the destination table, preserving candidate order. A table that does not
// exist yet has stored nothing, so every candidate is unsynced.
func (s *Store) UnsyncedIDs(kind models.ItemKind, saved bool, candidates []string) ([]string, error) {
	table := kind.TableName(saved)
	if !s.db.Migrator().HasTable(table) {
		return candidates, nil
	}

	stored := make(map[string]struct{}, len(candidates))
	for start := 0; start < len(candidates); start += maxBoundParams {
		end := min(start+maxBoundParams, len(candidates))

		var ids []string
		err := s.db.Table(table).
			Where("id IN ?", candidates[start:end]).
			Pluck("id", &ids).Error
		if err != nil {
			return nil, fmt.Errorf("failed to query stored ids from %s: %w", table, err)
		}

		for _, id := range ids {
			stored[id] = struct{}{}
		}
	}

	unsynced := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := stored[id]; !ok {
			unsynced = append(unsynced, id)
		}
	}

	return unsynced, nil
}

// InsertUsers writes author rows, keeping the earliest stored username for
// each account. Renamed accounts keep the name they were first archived
// under.
func (s *Store) InsertUsers(rows []models.UserRow) error {
	rows = dedupeUsers(rows)
	if len(rows) == 0 {
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}
	return nil
}

// UpsertSubreddits writes community rows, refreshing name and type on
// conflict since communities rename and change visibility.
func (s *Store) UpsertSubreddits(rows []models.SubredditRow) error {
	rows = dedupeSubreddits(rows)
	if len(rows) == 0 {
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subreddits: %w", err)
	}
	return nil
}

// UpsertComments writes comment rows to the live or saved table, replacing
// the stored version of re-fetched items so scores and edits stay current.
// Returns the number of rows written.
func (s *Store) UpsertComments(rows []models.CommentRow, saved bool) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.ensureItemTable(models.KindComments, saved); err != nil {
		return 0, err
	}

	res := s.db.Table(models.KindComments.TableName(saved)).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to upsert comments: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpsertPosts writes post rows, with the same semantics as UpsertComments.
func (s *Store) UpsertPosts(rows []models.PostRow, saved bool) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.ensureItemTable(models.KindPosts, saved); err != nil {
		return 0, err
	}

	res := s.db.Table(models.KindPosts.TableName(saved)).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to upsert posts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// EnsureSearchIndex builds full-text indexes over comment text and post
// title/text, with triggers keeping them current. The saved_ tables are
// indexed the same way as the account's own history. SQLite only; other
// dialects have their own search facilities and are left alone. Safe to
// call repeatedly.
func (s *Store) EnsureSearchIndex() error {
	if s.db.Dialector.Name() != "sqlite" {
		return nil
	}

	type ftsSpec struct {
		table   string
		columns []string
	}
	var specs []ftsSpec
	for _, saved := range []bool{false, true} {
		specs = append(specs,
			ftsSpec{table: models.KindComments.TableName(saved), columns: []string{"text"}},
			ftsSpec{table: models.KindPosts.TableName(saved), columns: []string{"title", "text"}},
		)
	}

	for _, spec := range specs {
		if !s.db.Migrator().HasTable(spec.table) {
			continue
		}
		if s.db.Migrator().HasTable(spec.table + "_fts") {
			continue
		}
		if err := s.createSearchIndex(spec.table, spec.columns); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) createSearchIndex(table string, columns []string) error {
	cols := ""
	newVals := ""
	oldVals := ""
	for i, col := range columns {
		if i > 0 {
			cols += ", "
			newVals += ", "
			oldVals += ", "
		}
		cols += col
		newVals += "new." + col
		oldVals += "old." + col
	}

	fts := table + "_fts"
	stmts := []string{
		fmt.Sprintf("CREATE VIRTUAL TABLE %s USING fts5(%s, content='%s', content_rowid='rowid')",
			fts, cols, table),
		fmt.Sprintf(`CREATE TRIGGER %s_ai AFTER INSERT ON %s BEGIN
			INSERT INTO %s(rowid, %s) VALUES (new.rowid, %s);
		END`, table, table, fts, cols, newVals),
		fmt.Sprintf(`CREATE TRIGGER %s_ad AFTER DELETE ON %s BEGIN
			INSERT INTO %s(%s, rowid, %s) VALUES ('delete', old.rowid, %s);
		END`, table, table, fts, fts, cols, oldVals),
		fmt.Sprintf(`CREATE TRIGGER %s_au AFTER UPDATE ON %s BEGIN
			INSERT INTO %s(%s, rowid, %s) VALUES ('delete', old.rowid, %s);
			INSERT INTO %s(rowid, %s) VALUES (new.rowid, %s);
		END`, table, table, fts, fts, cols, oldVals, fts, cols, newVals),
		// Backfill rows written before the index existed.
		fmt.Sprintf("INSERT INTO %s(rowid, %s) SELECT rowid, %s FROM %s", fts, cols, cols, table),
	}

	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to build search index for %s: %w", table, err)
		}
	}

	s.log.Info("built full-text search index", zap.String("table", table))
	return nil
}

func dedupeUsers(rows []models.UserRow) []models.UserRow {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, row)
	}
	return out
}

func dedupeSubreddits(rows []models.SubredditRow) []models.SubredditRow {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, row)
	}
	return out
}
