package authentication

import (
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"storybooks-backend/config"
	"storybooks-backend/models/users"
)

var GoogleOauthConfig = &oauth2.Config{
	RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
	ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	Scopes: []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	},
	Endpoint: google.Endpoint,
}

// HandleGoogleLogin starts the OAuth handshake. The state nonce lives in
// the session until the callback comes back.
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	session, _ := config.Store.Get(r, config.SessionName)
	session.Values["oauthState"] = state
	if err := session.Save(r, w); err != nil {
		logrus.WithError(err).Error("failed to save oauth state")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	http.Redirect(w, r, GoogleOauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback finishes the handshake: exchanges the code,
// fetches the Google profile, upserts the matching user and signs the
// session in. Any failure falls back to the login page.
func HandleGoogleCallback(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	session, _ := config.Store.Get(r, config.SessionName)
	wantState, _ := session.Values["oauthState"].(string)
	if wantState == "" || r.FormValue("state") != wantState {
		logrus.Warn("invalid oauth state")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	delete(session.Values, "oauthState")

	token, err := GoogleOauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		logrus.WithError(err).Error("failed to exchange code for token")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	tokenSource := GoogleOauthConfig.TokenSource(r.Context(), token)
	service, err := goauth2.NewService(r.Context(), option.WithTokenSource(tokenSource))
	if err != nil {
		logrus.WithError(err).Error("failed to create oauth2 service")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	info, err := service.Userinfo.Get().Do()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch user info")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	user, err := upsertGoogleUser(db, info)
	if err != nil {
		logrus.WithError(err).Error("failed to upsert google user")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	if err := SignInSession(w, r, user); err != nil {
		logrus.WithError(err).Error("failed to save session")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func upsertGoogleUser(db *gorm.DB, info *goauth2.Userinfo) (*users.User, error) {
	user, err := users.GetUserByGoogleID(db, info.Id)
	if err == nil {
		// Keep the display identity current; old comments keep the
		// name they were written under.
		user.DisplayName = info.Name
		user.FirstName = info.GivenName
		user.LastName = info.FamilyName
		user.Image = info.Picture
		if err := db.Save(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}

	newUser := users.User{
		GoogleID:    info.Id,
		Email:       info.Email,
		Provider:    "google",
		DisplayName: info.Name,
		FirstName:   info.GivenName,
		LastName:    info.FamilyName,
		Image:       info.Picture,
	}
	if err := db.Create(&newUser).Error; err != nil {
		return nil, err
	}
	return &newUser, nil
}
