package models

import "fmt"

// ItemKind identifies one of the two archivable item families. Its string
// value doubles as the live table name.
type ItemKind string

const (
	KindComments ItemKind = "comments"
	KindPosts    ItemKind = "posts"
)

// Kinds lists the item families in processing order.
func Kinds() []ItemKind {
	return []ItemKind{KindComments, KindPosts}
}

// TypePrefix returns the API fullname kind tag for this family ("t1"/"t3").
func (k ItemKind) TypePrefix() string {
	if k == KindPosts {
		return "t3"
	}
	return "t1"
}

// TableName returns the destination table, switching to the saved_ variant
// when the rows describe another account's items the subject saved.
func (k ItemKind) TableName(saved bool) string {
	if saved {
		return "saved_" + string(k)
	}
	return string(k)
}

// Fullname turns a bare item id into the prefixed form the info endpoint
// expects, e.g. "jj0ti6f" -> "t1_jj0ti6f". Ids that already carry a prefix
// are returned unchanged.
func (k ItemKind) Fullname(id string) string {
	if len(id) > 3 && id[2] == '_' {
		return id
	}
	return fmt.Sprintf("%s_%s", k.TypePrefix(), id)
}

// ExportFilename is the CSV file in a GDPR export that lists this family's
// item ids, optionally the saved_ variant.
func (k ItemKind) ExportFilename(saved bool) string {
	if saved {
		return "saved_" + string(k) + ".csv"
	}
	return string(k) + ".csv"
}
