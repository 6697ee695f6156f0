package story

import (
	"errors"
	"strings"
	"time"

	"storybooks-backend/models/users"
)

const (
	StatusPublic  = "public"
	StatusPrivate = "private"

	// MaxTitleLength caps story titles at the persistence boundary.
	MaxTitleLength = 100
)

var (
	ErrTitleRequired = errors.New("story title is required")
	ErrTitleTooLong  = errors.New("story title is too long")
	ErrBodyRequired  = errors.New("story body is required")
	ErrBadStatus     = errors.New("story status must be public or private")
)

type Story struct {
	ID        uint       `gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"type:varchar(100);not null"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	Status    string     `json:"status" gorm:"default:'public'"`
	UserID    uint       `json:"userId" gorm:"index;not null"`
	User      users.User `json:"user" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	LikeCount uint       `json:"likeCount" gorm:"default:0"`
	Fans      []Fan      `json:"fans" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE;"`
	Comments  []Comment  `json:"comments" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE;"`
}

// Fan is one row of the story's fan set. The composite primary key makes
// membership idempotent: a user appears at most once per story.
type Fan struct {
	StoryID   uint      `json:"storyId" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Comment is embedded in a story's feed. AuthorName is captured at append
// time, so renaming the author does not rewrite old comments.
type Comment struct {
	ID         uint      `gorm:"primaryKey"`
	StoryID    uint      `json:"storyId" gorm:"index;not null"`
	AuthorName string    `json:"authorName" gorm:"not null"`
	Message    string    `json:"message" gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// OwnedBy reports whether userID may edit or delete the story.
func (s *Story) OwnedBy(userID uint) bool {
	return s.UserID == userID
}

// Validate is run before every create and content update. Status defaults
// to public when the caller leaves it empty.
func (s *Story) Validate() error {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return ErrTitleRequired
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if s.Body == "" {
		return ErrBodyRequired
	}
	if s.Status == "" {
		s.Status = StatusPublic
	}
	if s.Status != StatusPublic && s.Status != StatusPrivate {
		return ErrBadStatus
	}
	return nil
}
