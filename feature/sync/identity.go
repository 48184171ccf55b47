package sync

import "reddit-archiver/core/reddit"

// Identity is one account's display name and prefixed id (t2_...).
type Identity struct {
	Username string
	Fullname string
}

// identityFromItems scans fetched items in order and returns the author of
// the first one that still carries an id. For a user-history listing every
// authored item names the same account, so the first match identifies the
// subject.
func identityFromItems[T reddit.Authored](items []T) (Identity, bool) {
	for _, item := range items {
		if !item.HasAuthor() {
			continue
		}
		username, fullname := item.AuthorIdentity()
		return Identity{Username: username, Fullname: fullname}, true
	}
	return Identity{}, false
}

// attachIdentity backfills the given author onto items that lost theirs.
// Items that already carry authorship are untouched.
func attachIdentity[T reddit.Authored](items []T, id Identity) {
	for _, item := range items {
		item.SetAuthorIdentity(id.Username, id.Fullname)
	}
}
