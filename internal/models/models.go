// ABOUTME: Core data model for diary entries and insert candidates.
// ABOUTME: Provides ordering and date formatting helpers shared by stores and views.
package models

import (
	"sort"
	"time"
)

// DefaultUserID is the placeholder owner written on every entry.
const DefaultUserID = "default-user"

// DateLayout renders entry dates as "March 5, 2024".
const DateLayout = "January 2, 2006"

// DiaryEntry represents a stored diary entry. ID and CreatedAt are assigned by the store.
type DiaryEntry struct {
	ID        string
	CreatedAt time.Time
	Title     string
	Mood      string
	Content   string
	UserID    string
}

// Draft is a candidate entry submitted for insertion.
type Draft struct {
	Title   string
	Mood    string
	Content string
	UserID  string
}

// NewDraft creates an insert candidate owned by the given user, or DefaultUserID if empty.
func NewDraft(title, mood, content, userID string) Draft {
	if userID == "" {
		userID = DefaultUserID
	}
	return Draft{
		Title:   title,
		Mood:    mood,
		Content: content,
		UserID:  userID,
	}
}

// SortNewestFirst orders entries by CreatedAt descending. Ties keep their input order.
func SortNewestFirst(entries []*DiaryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// IsNewestFirst reports whether entries are ordered by CreatedAt non-increasing.
func IsNewestFirst(entries []*DiaryEntry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			return false
		}
	}
	return true
}

// FormatDate renders t in the local timezone using DateLayout.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}
