package stories

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storybooks-backend/controllers/authentication"
	"storybooks-backend/models/story"
	"storybooks-backend/views"
)

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// AddStoryPage shows the authoring form.
func AddStoryPage(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	views.Render(w, "stories/add", views.Data{"user": user})
}

// CreateStory saves a new story owned by the session user.
func CreateStory(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	newStory := story.Story{
		Title:  r.FormValue("title"),
		Body:   r.FormValue("body"),
		Status: r.FormValue("status"),
		UserID: user.UserID,
	}

	if err := story.Create(db, &newStory); err != nil {
		logrus.WithError(err).Error("failed to create story")
		views.ServerError(w)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// ListStories shows all public stories, newest first.
func ListStories(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	publicStories, err := story.ListPublic(db)
	if err != nil {
		logrus.WithError(err).Error("failed to list stories")
		views.ServerError(w)
		return
	}

	views.Render(w, "stories/index", views.Data{
		"user":    user,
		"stories": publicStories,
	})
}

// ShowStory shows a single story with its comment feed. There is no
// status check: anyone signed in who has the id can read it.
func ShowStory(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	storyID, err := parseID(r.PathValue("id"))
	if err != nil {
		views.NotFound(w)
		return
	}

	s, err := story.FindByID(db, storyID)
	if err != nil {
		views.NotFound(w)
		return
	}

	views.Render(w, "stories/show", views.Data{
		"user":  user,
		"story": s,
	})
}

// UserStories shows one user's public stories, their own private ones
// included for nobody, not even themselves.
func UserStories(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	userID, err := parseID(r.PathValue("userId"))
	if err != nil {
		views.NotFound(w)
		return
	}

	userStories, err := story.ListUserPublic(db, userID)
	if err != nil {
		views.NotFound(w)
		return
	}

	views.Render(w, "stories/index", views.Data{
		"user":    user,
		"stories": userStories,
	})
}

// Dashboard lists everything the session user owns, private included.
func Dashboard(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	ownStories, err := story.ListByOwner(db, user.UserID)
	if err != nil {
		logrus.WithError(err).Error("failed to list own stories")
		views.ServerError(w)
		return
	}

	views.Render(w, "dashboard", views.Data{
		"user":    user,
		"stories": ownStories,
	})
}

// EditStoryPage shows the edit form to the owner. Anyone else is sent
// back to the public listing without an error.
func EditStoryPage(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	storyID, err := parseID(r.PathValue("id"))
	if err != nil {
		views.NotFound(w)
		return
	}

	s, err := story.FindByID(db, storyID)
	if err != nil {
		views.NotFound(w)
		return
	}

	if !s.OwnedBy(user.UserID) {
		http.Redirect(w, r, "/stories", http.StatusFound)
		return
	}

	views.Render(w, "stories/edit", views.Data{
		"user":  user,
		"story": s,
	})
}

// UpdateStory replaces title, body and status. Owner only; non-owners
// get the silent redirect, a missing story the not-found page.
func UpdateStory(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	storyID, err := parseID(r.PathValue("id"))
	if err != nil {
		views.NotFound(w)
		return
	}

	var s story.Story
	if result := db.First(&s, storyID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			views.NotFound(w)
			return
		}
		logrus.WithError(result.Error).Error("failed to load story")
		views.ServerError(w)
		return
	}

	if !s.OwnedBy(user.UserID) {
		http.Redirect(w, r, "/stories", http.StatusFound)
		return
	}

	patch := story.ContentPatch{
		Title:  r.FormValue("title"),
		Body:   r.FormValue("body"),
		Status: r.FormValue("status"),
	}
	if _, err := story.UpdateFields(db, storyID, patch); err != nil {
		logrus.WithError(err).Error("failed to update story")
		views.ServerError(w)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// DeleteStory removes a story. Owner only, same silent redirect policy.
func DeleteStory(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	storyID, err := parseID(r.PathValue("id"))
	if err != nil {
		views.NotFound(w)
		return
	}

	var s story.Story
	if result := db.First(&s, storyID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			views.NotFound(w)
			return
		}
		logrus.WithError(result.Error).Error("failed to load story")
		views.ServerError(w)
		return
	}

	if !s.OwnedBy(user.UserID) {
		http.Redirect(w, r, "/stories", http.StatusFound)
		return
	}

	if err := story.Delete(db, storyID); err != nil {
		logrus.WithError(err).Error("failed to delete story")
		views.ServerError(w)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
