package story

import (
	"gorm.io/gorm"
)

// ContentPatch carries the only story fields an owner may edit.
type ContentPatch struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status"`
}

// Create validates the draft and inserts it. The owner must already be
// set from the authenticated session; it is never reassigned afterwards.
func Create(db *gorm.DB, s *Story) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return db.Create(s).Error
}

// FindByID loads one story with its owner, fan set and comment feed.
// Comments come back newest first. No status check here: a private story
// stays reachable by id for any signed-in user.
func FindByID(db *gorm.DB, id uint) (*Story, error) {
	var s Story
	result := db.
		Preload("User").
		Preload("Fans").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("comments.id DESC")
		}).
		First(&s, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &s, nil
}

// ListPublic returns all public stories, newest first, each with its
// owner's display identity populated.
func ListPublic(db *gorm.DB) ([]Story, error) {
	var stories []Story
	result := db.
		Where("status = ?", StatusPublic).
		Preload("User").
		Order("created_at DESC").
		Find(&stories)
	return stories, result.Error
}

// ListUserPublic returns one user's public stories, newest first. The
// filter is the same even when the viewer is the owner, so an owner's
// private stories do not show up in their own listing view either.
func ListUserPublic(db *gorm.DB, userID uint) ([]Story, error) {
	var stories []Story
	result := db.
		Where("user_id = ? AND status = ?", userID, StatusPublic).
		Preload("User").
		Order("created_at DESC").
		Find(&stories)
	return stories, result.Error
}

// ListByOwner backs the dashboard: every story the user owns, private
// ones included, newest first.
func ListByOwner(db *gorm.DB, userID uint) ([]Story, error) {
	var stories []Story
	result := db.
		Where("user_id = ?", userID).
		Preload("User").
		Order("created_at DESC").
		Find(&stories)
	return stories, result.Error
}

// UpdateFields replaces title, body and status of an existing story.
// Callers are expected to have run the ownership check already.
func UpdateFields(db *gorm.DB, id uint, patch ContentPatch) (*Story, error) {
	var s Story
	if result := db.First(&s, id); result.Error != nil {
		return nil, result.Error
	}

	s.Title = patch.Title
	s.Body = patch.Body
	s.Status = patch.Status
	if err := s.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":  s.Title,
		"body":   s.Body,
		"status": s.Status,
	}
	if err := db.Model(&s).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes the story together with its fan set and comment feed.
func Delete(db *gorm.DB, id uint) error {
	var s Story
	if result := db.First(&s, id); result.Error != nil {
		return result.Error
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&Fan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&s).Error
	})
}
