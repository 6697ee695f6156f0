package stories

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storybooks-backend/controllers/authentication"
	"storybooks-backend/models/story"
	"storybooks-backend/views"
)

// ToggleLike flips a like on a story. Ownership is not required here:
// any signed-in user may like any story they can reach by id, private
// ones included.
func ToggleLike(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	storyID, err := parseID(r.PathValue("id"))
	if err != nil {
		views.NotFound(w)
		return
	}
	userID, err := parseID(r.PathValue("userId"))
	if err != nil {
		views.NotFound(w)
		return
	}

	if _, err := story.ToggleLike(db, storyID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			views.NotFound(w)
			return
		}
		logrus.WithError(err).Error("failed to toggle like")
		views.ServerError(w)
		return
	}

	http.Redirect(w, r, "/stories", http.StatusFound)
}

// AddComment appends a comment to a story's feed and returns the caller
// to the page they came from.
func AddComment(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity) {
	storyID, err := parseID(r.PathValue("id"))
	if err != nil {
		views.NotFound(w)
		return
	}
	authorID, err := parseID(r.PathValue("userId"))
	if err != nil {
		views.NotFound(w)
		return
	}

	if _, err := story.AppendComment(db, storyID, authorID, r.FormValue("message")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			views.NotFound(w)
			return
		}
		logrus.WithError(err).Error("failed to append comment")
		views.ServerError(w)
		return
	}

	if back := r.Header.Get("Referer"); back != "" {
		http.Redirect(w, r, back, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/stories", http.StatusFound)
}
