package story

import (
	"errors"

	"gorm.io/gorm"

	"storybooks-backend/models/users"
)

// ErrUnknownAuthor is returned when a comment's author id cannot be
// resolved to a user. The append fails as a whole, there is no
// anonymous fallback.
var ErrUnknownAuthor = errors.New("comment author could not be resolved")

// ToggleLike flips userID's like on a story. A fan row present means
// liked: remove it and take one off the counter; absent means not liked:
// add it and put one on. Row removal and counter delta run in one
// transaction so like_count always equals the number of fan rows, even
// with concurrent togglers.
func ToggleLike(db *gorm.DB, storyID, userID uint) (*Story, error) {
	if result := db.First(&Story{}, storyID); result.Error != nil {
		return nil, result.Error
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var fan Fan
		result := tx.Where("story_id = ? AND user_id = ?", storyID, userID).First(&fan)
		switch {
		case result.Error == nil:
			if err := tx.Where("story_id = ? AND user_id = ?", storyID, userID).Delete(&Fan{}).Error; err != nil {
				return err
			}
			return tx.Model(&Story{}).Where("id = ?", storyID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			if err := tx.Create(&Fan{StoryID: storyID, UserID: userID}).Error; err != nil {
				return err
			}
			return tx.Model(&Story{}).Where("id = ?", storyID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
		default:
			return result.Error
		}
	})
	if err != nil {
		return nil, err
	}

	return FindByID(db, storyID)
}

// AppendComment resolves the author's display name and puts a new
// comment at the head of the story's feed. The name is denormalized:
// later profile renames leave old comments untouched. Message content
// is stored as given.
func AppendComment(db *gorm.DB, storyID, authorUserID uint, message string) (*Comment, error) {
	if result := db.First(&Story{}, storyID); result.Error != nil {
		return nil, result.Error
	}

	author, err := users.GetUserByID(db, authorUserID)
	if err != nil {
		return nil, ErrUnknownAuthor
	}

	comment := Comment{
		StoryID:    storyID,
		AuthorName: author.DisplayName,
		Message:    message,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
