package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storybooks-backend/config"
	"storybooks-backend/controllers/authentication"
	"storybooks-backend/controllers/httpCors"
	"storybooks-backend/controllers/stories"
	"storybooks-backend/models/story"
	"storybooks-backend/models/users"
	"storybooks-backend/views"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on the environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "7000"
	}

	if err := config.InitDB(); err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}

	err := config.DB.AutoMigrate(
		&users.User{},
		&story.Story{},
		&story.Fan{},
		&story.Comment{},
	)
	if err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		logrus.Fatalf("failed to get database handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logrus.Fatalf("failed to ping database: %v", err)
	}
	logrus.Info("connected to database")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handleLogin)
	mux.HandleFunc("GET /auth/google", authentication.HandleGoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", func(w http.ResponseWriter, r *http.Request) {
		authentication.HandleGoogleCallback(w, r, config.DB)
	})
	mux.HandleFunc("GET /auth/logout", authentication.Logout)
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		authentication.Register(w, r, config.DB)
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		authentication.Login(w, r, config.DB)
	})

	mux.Handle("GET /dashboard", withUser(stories.Dashboard))
	mux.Handle("GET /stories", withUser(stories.ListStories))
	mux.Handle("POST /stories", withUser(stories.CreateStory))
	mux.Handle("GET /stories/add", withUser(stories.AddStoryPage))
	mux.Handle("GET /stories/{id}", withUser(stories.ShowStory))
	mux.Handle("GET /stories/edit/{id}", withUser(stories.EditStoryPage))
	mux.Handle("GET /stories/user/{userId}", withUser(stories.UserStories))
	mux.Handle("PUT /stories/{id}", withUser(stories.UpdateStory))
	mux.Handle("PUT /stories/comment/{id}/{userId}", withUser(stories.AddComment))
	mux.Handle("PUT /stories/like/{id}/{userId}", withUser(stories.ToggleLike))
	mux.Handle("DELETE /stories/{id}", withUser(stories.DeleteStory))

	handler := httpCors.CorsSettings().Handler(requestLogger(methodOverride(mux)))

	logrus.Infof("server listening on port %s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

type storyHandler func(w http.ResponseWriter, r *http.Request, db *gorm.DB, user authentication.Identity)

func withUser(h storyHandler) http.Handler {
	return authentication.RequireAuth(config.DB, func(w http.ResponseWriter, r *http.Request, user authentication.Identity) {
		h(w, r, config.DB, user)
	})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := authentication.CurrentIdentity(r, config.DB); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	views.Render(w, "login", nil)
}

// methodOverride lets HTML forms reach the PUT and DELETE routes by
// posting a _method field, the way the story and comment forms do.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.PostFormValue("_method") {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("request handled")
	})
}
