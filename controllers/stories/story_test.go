package stories

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storybooks-backend/controllers/authentication"
	"storybooks-backend/models/story"
	"storybooks-backend/models/users"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&users.User{}, &story.Story{}, &story.Fan{}, &story.Comment{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, displayName string) *users.User {
	t.Helper()
	user := users.User{
		Email:       strings.ToLower(displayName) + "@example.com",
		Provider:    "google",
		GoogleID:    "google-" + displayName,
		DisplayName: displayName,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedStory(t *testing.T, db *gorm.DB, owner *users.User, title, status string) *story.Story {
	t.Helper()
	s := story.Story{Title: title, Body: "body", Status: status, UserID: owner.ID}
	require.NoError(t, story.Create(db, &s))
	return &s
}

func identity(u *users.User) authentication.Identity {
	return authentication.Identity{UserID: u.ID, DisplayName: u.DisplayName}
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateStorySetsOwnerFromSession(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")

	form := url.Values{"title": {"T"}, "body": {"B"}, "status": {"public"}}
	rec := httptest.NewRecorder()
	CreateStory(rec, formRequest(http.MethodPost, "/stories", form), db, identity(alice))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	stored, err := story.ListByOwner(db, alice.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "T", stored[0].Title)
	assert.Equal(t, alice.ID, stored[0].UserID)
}

func TestCreateStoryInvalidDraftRendersServerError(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")

	form := url.Values{"title": {"  "}, "body": {"B"}}
	rec := httptest.NewRecorder()
	CreateStory(rec, formRequest(http.MethodPost, "/stories", form), db, identity(alice))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShowStoryUnknownIDRendersNotFound(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")

	req := httptest.NewRequest(http.MethodGet, "/stories/999", nil)
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	ShowStory(rec, req, db, identity(alice))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowStoryReachesPrivateStoriesByID(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	bob := seedUser(t, db, "Bob")
	s := seedStory(t, db, alice, "Secret", story.StatusPrivate)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/stories/%d", s.ID), nil)
	req.SetPathValue("id", fmt.Sprint(s.ID))
	rec := httptest.NewRecorder()
	ShowStory(rec, req, db, identity(bob))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Secret")
}

func TestUpdateStoryNonOwnerSilentlyRedirects(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	bob := seedUser(t, db, "Bob")
	s := seedStory(t, db, alice, "T", story.StatusPublic)

	form := url.Values{"title": {"hijacked"}, "body": {"B2"}, "status": {"public"}}
	req := formRequest(http.MethodPut, fmt.Sprintf("/stories/%d", s.ID), form)
	req.SetPathValue("id", fmt.Sprint(s.ID))
	rec := httptest.NewRecorder()
	UpdateStory(rec, req, db, identity(bob))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/stories", rec.Header().Get("Location"))

	unchanged, err := story.FindByID(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", unchanged.Title)
}

func TestUpdateStoryOwnerSucceeds(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	s := seedStory(t, db, alice, "T", story.StatusPublic)

	form := url.Values{"title": {"T2"}, "body": {"B2"}, "status": {"private"}}
	req := formRequest(http.MethodPut, fmt.Sprintf("/stories/%d", s.ID), form)
	req.SetPathValue("id", fmt.Sprint(s.ID))
	rec := httptest.NewRecorder()
	UpdateStory(rec, req, db, identity(alice))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	updated, err := story.FindByID(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, story.StatusPrivate, updated.Status)
}

func TestUpdateStoryUnknownIDRendersNotFound(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")

	form := url.Values{"title": {"T"}, "body": {"B"}, "status": {"public"}}
	req := formRequest(http.MethodPut, "/stories/999", form)
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	UpdateStory(rec, req, db, identity(alice))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStoryNonOwnerSilentlyRedirects(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	bob := seedUser(t, db, "Bob")
	s := seedStory(t, db, alice, "T", story.StatusPublic)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/stories/%d", s.ID), nil)
	req.SetPathValue("id", fmt.Sprint(s.ID))
	rec := httptest.NewRecorder()
	DeleteStory(rec, req, db, identity(bob))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/stories", rec.Header().Get("Location"))

	_, err := story.FindByID(db, s.ID)
	assert.NoError(t, err)
}

func TestDeleteStoryOwnerSucceeds(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	s := seedStory(t, db, alice, "T", story.StatusPublic)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/stories/%d", s.ID), nil)
	req.SetPathValue("id", fmt.Sprint(s.ID))
	rec := httptest.NewRecorder()
	DeleteStory(rec, req, db, identity(alice))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	_, err := story.FindByID(db, s.ID)
	assert.Error(t, err)
}

func TestEditStoryPageNonOwnerSilentlyRedirects(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	bob := seedUser(t, db, "Bob")
	s := seedStory(t, db, alice, "T", story.StatusPublic)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/stories/edit/%d", s.ID), nil)
	req.SetPathValue("id", fmt.Sprint(s.ID))
	rec := httptest.NewRecorder()
	EditStoryPage(rec, req, db, identity(bob))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/stories", rec.Header().Get("Location"))
}

func TestUserStoriesShowsOnlyPublic(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	seedStory(t, db, alice, "Public story", story.StatusPublic)
	seedStory(t, db, alice, "Private story", story.StatusPrivate)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/stories/user/%d", alice.ID), nil)
	req.SetPathValue("userId", fmt.Sprint(alice.ID))
	rec := httptest.NewRecorder()
	UserStories(rec, req, db, identity(alice))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Public story")
	assert.NotContains(t, rec.Body.String(), "Private story")
}

func TestDashboardIncludesPrivateStories(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "Alice")
	seedStory(t, db, alice, "Public story", story.StatusPublic)
	seedStory(t, db, alice, "Private story", story.StatusPrivate)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	Dashboard(rec, req, db, identity(alice))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Public story")
	assert.Contains(t, rec.Body.String(), "Private story")
}
