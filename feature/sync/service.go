package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reddit-archiver/core/reddit"
	"reddit-archiver/feature/archive"
	"reddit-archiver/feature/sync/models"

	"go.uber.org/zap"
)

// API is the slice of the Reddit client the sync feature consumes.
type API interface {
	UserComments(ctx context.Context, username string) ([]*reddit.Comment, error)
	UserPosts(ctx context.Context, username string) ([]*reddit.Post, error)
	LookupByIDs(ctx context.Context, ids []string) ([]*reddit.Comment, []*reddit.Post, error)
	UserID(ctx context.Context, username string) (string, error)
}

// Service orchestrates fetching records from the API and persisting them.
type Service struct {
	cfg   Config
	api   API
	store *Store
	log   *zap.Logger
}

// NewService creates a sync service.
func NewService(cfg Config, api API, store *Store, log *zap.Logger) *Service {
	return &Service{
		cfg:   cfg,
		api:   api,
		store: store,
		log:   log,
	}
}

// Report summarizes one sync run.
type Report struct {
	CommentsWritten int64
	PostsWritten    int64
	// Dropped counts items skipped because no author could be attributed.
	CommentsDropped int
	PostsDropped    int
}

// CleanUsername normalizes operator input: whitespace and any /u/ or u/
// prefix are stripped so a pasted profile fragment works as-is.
func CleanUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, "/")
	username = strings.TrimPrefix(username, "u/")
	return strings.Trim(username, "/ ")
}

// SyncUser archives the account's recent comment and post history from the
// live API. Rate limiting mid-listing degrades to archiving whatever was
// fetched; an account with no visible history at all is an error.
func (s *Service) SyncUser(ctx context.Context, username string) (Report, error) {
	var report Report

	comments, err := s.api.UserComments(ctx, username)
	if err != nil && !s.tolerable(err) {
		return report, err
	}

	posts, err := s.api.UserPosts(ctx, username)
	if err != nil && !s.tolerable(err) {
		return report, err
	}

	if len(comments) == 0 && len(posts) == 0 {
		return report, fmt.Errorf("no data found for username: %s", username)
	}

	// Within one listing every attributed item names the same account, so
	// the first item still carrying an id can re-attribute the ones the API
	// returned with authorship stripped. Each listing is its own batch.
	if identity, ok := identityFromItems(comments); ok {
		attachIdentity(comments, identity)
	}
	if identity, ok := identityFromItems(posts); ok {
		attachIdentity(posts, identity)
	}

	if err := s.store.Migrate(); err != nil {
		return report, err
	}

	written, dropped, err := s.saveComments(comments, false)
	if err != nil {
		return report, err
	}
	report.CommentsWritten += written
	report.CommentsDropped += dropped

	written, dropped, err = s.savePosts(posts, false)
	if err != nil {
		return report, err
	}
	report.PostsWritten += written
	report.PostsDropped += dropped

	return report, s.store.EnsureSearchIndex()
}

// exportFile is one export listing scheduled for reconciliation.
type exportFile struct {
	kind  models.ItemKind
	saved bool
	ids   []string
}

// SyncArchive reconciles a GDPR export directory against the store: every
// exported item id not yet archived is hydrated through the batch-lookup
// endpoint and written. Re-running after a partial failure picks up where
// the last run stopped. A fully reconciled archive is a no-op, not an error.
func (s *Service) SyncArchive(ctx context.Context, dir string, includeSaved bool) (Report, error) {
	var report Report

	// Read every export file up front. A malformed or incomplete export
	// directory is operator error and should surface before the first
	// network request, not halfway through a long run.
	var files []exportFile
	for _, kind := range models.Kinds() {
		ids, err := archive.IDs(dir, kind.ExportFilename(false))
		if err != nil {
			return report, err
		}
		files = append(files, exportFile{kind: kind, ids: ids})
	}
	if includeSaved {
		for _, kind := range models.Kinds() {
			ids, err := archive.IDs(dir, kind.ExportFilename(true))
			if err != nil {
				var missing *archive.MissingFileError
				if errors.As(err, &missing) {
					// Older exports predate the saved_ files.
					s.log.Debug("export file absent, skipping",
						zap.String("file", missing.Filename))
					continue
				}
				return report, err
			}
			files = append(files, exportFile{kind: kind, saved: true, ids: ids})
		}
	}

	if err := s.store.Migrate(); err != nil {
		return report, err
	}

	// The export only records ids. Items whose authorship the API no longer
	// returns are attributed to the archive's subject, resolved at most
	// once per run. Saved items belong to other accounts, so the subject
	// would be the wrong attribution there; a placeholder account stands in
	// and no resolution is attempted.
	subject := s.subjectResolver(dir)
	placeholder := s.cfg.placeholderIdentity()

	for _, file := range files {
		if err := s.reconcileExport(ctx, &report, file, subject, placeholder); err != nil {
			return report, err
		}
	}

	return report, s.store.EnsureSearchIndex()
}

// reconcileExport brings one export file's items into the store.
func (s *Service) reconcileExport(
	ctx context.Context,
	report *Report,
	file exportFile,
	subject func(context.Context) (Identity, bool),
	placeholder Identity,
) error {
	log := s.log.With(zap.String("file", file.kind.ExportFilename(file.saved)))

	unsynced, err := s.store.UnsyncedIDs(file.kind, file.saved, file.ids)
	if err != nil {
		return err
	}
	log.Info("reconciled export file against store",
		zap.Int("exported", len(file.ids)),
		zap.Int("unsynced", len(unsynced)))
	if len(unsynced) == 0 {
		return nil
	}

	fullnames := make([]string, len(unsynced))
	for i, id := range unsynced {
		fullnames[i] = file.kind.Fullname(id)
	}

	comments, posts, err := s.api.LookupByIDs(ctx, fullnames)
	if err != nil && !s.tolerable(err) {
		return err
	}

	// Attribution for items whose author is gone, in priority order: any
	// item in this batch that kept its author, then the resolved subject.
	// Saved batches skip both and take the placeholder directly.
	identity, ok := placeholder, true
	if !file.saved {
		identity, ok = identityFromItems(comments)
		if !ok {
			identity, ok = identityFromItems(posts)
		}
		if !ok {
			identity, ok = subject(ctx)
		}
	}
	if ok {
		attachIdentity(comments, identity)
		attachIdentity(posts, identity)
	}

	written, dropped, err := s.saveComments(comments, file.saved)
	if err != nil {
		return err
	}
	report.CommentsWritten += written
	report.CommentsDropped += dropped

	written, dropped, err = s.savePosts(posts, file.saved)
	if err != nil {
		return err
	}
	report.PostsWritten += written
	report.PostsDropped += dropped

	return nil
}

// subjectResolver resolves the archive's subject identity on first use and
// memoizes the outcome either way. Resolution failing is survivable: items
// needing backfill are dropped with a diagnostic instead.
func (s *Service) subjectResolver(dir string) func(context.Context) (Identity, bool) {
	var (
		resolved bool
		identity Identity
		ok       bool
	)

	return func(ctx context.Context) (Identity, bool) {
		if resolved {
			return identity, ok
		}
		resolved = true

		username, err := archive.Username(dir)
		if err != nil {
			s.log.Warn("could not resolve archive subject, authorless items will be dropped",
				zap.Error(err))
			return identity, false
		}

		id, err := s.api.UserID(ctx, username)
		if err != nil {
			s.log.Warn("could not resolve archive subject, authorless items will be dropped",
				zap.String("username", username), zap.Error(err))
			return identity, false
		}

		identity = Identity{Username: username, Fullname: "t2_" + id}
		ok = true
		return identity, ok
	}
}

// tolerable reports whether a fetch error still left usable partial results.
// Rate limiting and an abandoned batch chunk qualify; the run continues with
// what was fetched.
func (s *Service) tolerable(err error) bool {
	var rateErr *reddit.RateLimitError
	if errors.As(err, &rateErr) {
		s.log.Warn("rate limited, continuing with partial results",
			zap.String("window", rateErr.Stats()))
		return true
	}

	var partialErr *reddit.PartialBatchError
	if errors.As(err, &partialErr) {
		s.log.Warn("batch lookup incomplete, continuing with partial results",
			zap.Int("fetched", partialErr.Fetched), zap.Error(partialErr.Err))
		return true
	}

	return false
}

func (s *Service) saveComments(comments []*reddit.Comment, saved bool) (int64, int, error) {
	users, subreddits, rows := commentBatch(comments)

	if err := s.store.InsertUsers(users); err != nil {
		return 0, 0, err
	}
	if err := s.store.UpsertSubreddits(subreddits); err != nil {
		return 0, 0, err
	}

	written, err := s.store.UpsertComments(rows, saved)
	if err != nil {
		return 0, 0, err
	}

	dropped := len(comments) - len(rows)
	if dropped > 0 {
		s.log.Warn("dropped comments with unrecoverable authors",
			zap.Int("dropped", dropped))
	}

	return written, dropped, nil
}

func (s *Service) savePosts(posts []*reddit.Post, saved bool) (int64, int, error) {
	users, subreddits, rows := postBatch(posts)

	if err := s.store.InsertUsers(users); err != nil {
		return 0, 0, err
	}
	if err := s.store.UpsertSubreddits(subreddits); err != nil {
		return 0, 0, err
	}

	written, err := s.store.UpsertPosts(rows, saved)
	if err != nil {
		return 0, 0, err
	}

	dropped := len(posts) - len(rows)
	if dropped > 0 {
		s.log.Warn("dropped posts with unrecoverable authors",
			zap.Int("dropped", dropped))
	}

	return written, dropped, nil
}
