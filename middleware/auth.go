package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"skillboard/backend/config"
)

// Define context keys
type contextKey string

const UserIDKey contextKey = "user_id"

// TokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Authenticator resolves the user behind a request. Saved filters and custom
// reports are owned by that user.
type Authenticator struct {
	verifier  TokenVerifier
	devUserID string
	logger    *slog.Logger
}

// ErrNoCredentials is returned when production runs without Firebase credentials.
var ErrNoCredentials = errors.New("firebase credentials are required in production")

// NewAuthenticator verifies ID tokens with Firebase when credentials are
// configured. Without credentials every request runs as the development user,
// which production refuses.
func NewAuthenticator(ctx context.Context, cfg config.FirebaseConfig, production bool, logger *slog.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		logger.Info("using JSON Firebase credentials")
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsBase64 != "":
		logger.Info("using base64-encoded Firebase credentials")
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 Firebase credentials: %w", err)
		}
		credentials = decoded
	case production:
		return nil, ErrNoCredentials
	default:
		logger.Warn("no Firebase credentials configured, requests run as the development user", "user", cfg.DevUserID)
		return NewDevAuthenticator(cfg.DevUserID, logger), nil
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized")
	return NewTokenAuthenticator(client, logger), nil
}

// NewTokenAuthenticator requires a valid bearer token on every request.
func NewTokenAuthenticator(verifier TokenVerifier, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{verifier: verifier, logger: logger}
}

// NewDevAuthenticator attributes every request to userID.
func NewDevAuthenticator(userID string, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{devUserID: userID, logger: logger}
}

// Middleware stores the id of the requesting user in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if a.verifier == nil {
			ctx := context.WithValue(r.Context(), UserIDKey, a.devUserID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		idToken := extractToken(r.Header.Get("Authorization"))
		if idToken == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		token, err := a.verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			a.logger.Warn("failed to verify ID token", "path", r.URL.Path, "error", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserIDFromContext retrieves the user ID from the request context
func UserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
