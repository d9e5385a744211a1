package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/yousong/internal/plugins/artists"
	"github.com/keyxmakerx/yousong/internal/plugins/auth"
	"github.com/keyxmakerx/yousong/internal/plugins/songs"
)

// RegisterRoutes wires every plugin into the Echo instance: repositories
// onto the shared DB pool, services onto repositories, handlers onto
// services, and finally routes onto handlers.
//
// Returns the song and artist repositories plus the auth service so the
// startup seed routine can reuse the exact same stack the handlers do.
func (a *App) RegisterRoutes() (songs.SongRepository, artists.ArtistRepository, auth.AuthService, auth.UserRepository) {
	// --- Auth ---
	userRepo := auth.NewUserRepository(a.DB)
	tokens := auth.NewTokenService(a.Config.Auth.SecretKey, a.Config.Auth.TokenTTL, a.Config.Auth.Issuer)
	authService := auth.NewAuthService(userRepo, tokens)
	authHandler := auth.NewHandler(authService)

	// Identity resolution runs on every request. It only annotates the
	// context -- anonymous requests pass through untouched.
	a.Echo.Use(auth.ResolveIdentity(tokens, userRepo))

	auth.RegisterRoutes(a.Echo, authHandler, a.Redis)

	// --- Artists ---
	artistRepo := artists.NewArtistRepository(a.DB)
	artistService := artists.NewArtistService(artistRepo)
	artists.RegisterRoutes(a.Echo, artists.NewHandler(artistService))

	// --- Songs ---
	songRepo := songs.NewSongRepository(a.DB)
	songService := songs.NewSongService(songRepo)
	songs.RegisterRoutes(a.Echo, songs.NewHandler(songService))

	// --- Health ---
	a.Echo.GET("/healthz", a.healthz)

	return songRepo, artistRepo, authService, userRepo
}

// healthz reports liveness of the server and its backing stores. Returns
// 503 when either MariaDB or Redis is unreachable so orchestrators can
// restart or reroute.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"database": "ok",
		"redis":    "ok",
	}
	code := http.StatusOK

	if err := a.DB.PingContext(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		status["status"] = "degraded"
		status["redis"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, status)
}
