package auth

import (
	"log/slog"
	"net/http"

	"github.com/docket-dev/docket/internal/config"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// InitProviders configures gothic's session store and registers every
// provider that has credentials. It returns the enabled provider names.
func InitProviders(cfg *config.Config, logger *slog.Logger) []string {
	secret := cfg.SessionSecret

	if secret == "" {
		secret = cfg.JWTSecret
		logger.Warn("SESSION_SECRET not set, reusing JWT_SECRET for the OAuth state cookie")
	}

	// Gothic only keeps OAuth state between redirect and callback.
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	var providers []goth.Provider
	var enabled []string

	if cfg.GoogleEnabled() {
		providers = append(providers, google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL, "email", "profile"))
		enabled = append(enabled, ProviderGoogle)
	}

	if cfg.FacebookEnabled() {
		providers = append(providers, facebook.New(cfg.FacebookClientID, cfg.FacebookClientSecret, cfg.FacebookCallbackURL, "email", "public_profile"))
		enabled = append(enabled, ProviderFacebook)
	}

	goth.ClearProviders()

	if len(providers) == 0 {
		logger.Info("no social login providers configured")
		return nil
	}

	goth.UseProviders(providers...)
	logger.Info("social login providers initialized", "providers", enabled)

	return enabled
}

// ProviderEnabled reports whether name was registered with goth.
func ProviderEnabled(name string) bool {
	_, err := goth.GetProvider(name)
	return err == nil
}
