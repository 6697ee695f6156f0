package authentication

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storybooks-backend/config"
	"storybooks-backend/models/users"
)

var JwtKey = []byte(os.Getenv("JWT_SECRET"))

var ErrNoIdentity = errors.New("no authenticated identity on request")

type Claims struct {
	Email  string `json:"email"`
	UserID uint   `json:"userId"`
	jwt.StandardClaims
}

// Identity is the request-scoped result of authentication. It is passed
// by parameter into every story handler instead of being read from
// ambient state.
type Identity struct {
	UserID      uint
	DisplayName string
}

// AuthedHandler is a story handler that needs the signed-in user.
type AuthedHandler func(w http.ResponseWriter, r *http.Request, user Identity)

// RequireAuth resolves the caller's identity and hands it to next.
// Requests without a usable session or bearer token are sent back to
// the login page.
func RequireAuth(db *gorm.DB, next AuthedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := CurrentIdentity(r, db)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r, *identity)
	}
}

// CurrentIdentity finds out who is calling: first the session cookie,
// then an Authorization bearer token.
func CurrentIdentity(r *http.Request, db *gorm.DB) (*Identity, error) {
	session, _ := config.Store.Get(r, config.SessionName)
	if userID, ok := session.Values["userID"].(uint); ok {
		user, err := users.GetUserByID(db, userID)
		if err != nil {
			return nil, err
		}
		return &Identity{UserID: user.ID, DisplayName: user.DisplayName}, nil
	}

	claims, err := ValidateToken(r)
	if err != nil {
		return nil, ErrNoIdentity
	}
	user, err := users.GetUserByID(db, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: user.ID, DisplayName: user.DisplayName}, nil
}

// ValidateToken checks the Authorization header and returns the claims
// of a valid bearer token.
func ValidateToken(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("authorization header required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// GenerateToken issues a bearer token for API clients that do not carry
// the session cookie.
func GenerateToken(user *users.User) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// SignInSession records the user on the session cookie.
func SignInSession(w http.ResponseWriter, r *http.Request, user *users.User) error {
	session, _ := config.Store.Get(r, config.SessionName)
	session.Values["userID"] = user.ID
	session.Values["displayName"] = user.DisplayName
	return session.Save(r, w)
}

// Register creates a local email/password account and returns a token.
func Register(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var input struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Email == "" || input.Password == "" || input.DisplayName == "" {
		http.Error(w, "Email, password and display name are required", http.StatusBadRequest)
		return
	}

	var existing users.User
	if err := db.Where("email = ? AND provider = ?", input.Email, "local").First(&existing).Error; err == nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := users.User{
		Email:       input.Email,
		Password:    string(hashedPassword),
		Provider:    "local",
		DisplayName: input.DisplayName,
	}
	if err := db.Create(&user).Error; err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	tokenString, err := GenerateToken(&user)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  user,
		"token": tokenString,
	})
}

// Login checks a local account's password and returns a fresh token.
func Login(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	var user users.User
	if err := db.Where("email = ? AND provider = ?", input.Email, "local").First(&user).Error; err != nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	tokenString, err := GenerateToken(&user)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": tokenString})
}

// Logout drops the session and returns the caller to the login page.
func Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := config.Store.Get(r, config.SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusFound)
}
