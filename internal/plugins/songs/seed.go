package songs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/yousong/internal/apperror"
	"github.com/keyxmakerx/yousong/internal/plugins/artists"
	"github.com/keyxmakerx/yousong/internal/plugins/auth"
)

// seedOwnerUsername is the development user owning all seeded songs.
// Password: "password". Intended for local development only; seeding is
// disabled via SEED=false in production.
const (
	seedOwnerUsername = "hugo"
	seedOwnerPassword = "password"
)

// seedArtist pairs an artist with their catalog entries.
type seedArtist struct {
	name        string
	description string
	songs       []seedSong
}

type seedSong struct {
	title         string
	genres        []string
	lengthSeconds int
}

var seedCatalog = []seedArtist{
	{"Ed Sheeran", "UK singer-songwriter", []seedSong{
		{"Shape of You", []string{"Pop"}, 233},
		{"Perfect", []string{"Pop"}, 263},
		{"Bad Habits", []string{"Pop"}, 231},
		{"Photograph", []string{"Pop"}, 258},
	}},
	{"Queen", "Legendary British rock band", []seedSong{
		{"Bohemian Rhapsody", []string{"Rock"}, 354},
	}},
	{"Taylor Swift", "US singer-songwriter and producer", []seedSong{
		{"Love Story", []string{"Country Pop", "Pop"}, 235},
		{"Blank Space", []string{"Pop"}, 231},
		{"Cruel Summer", []string{"Synth-pop", "Pop"}, 178},
	}},
	{"The Weeknd", "Canadian singer, songwriter and producer", []seedSong{
		{"Blinding Lights", []string{"Synthwave", "Pop"}, 200},
		{"Save Your Tears", []string{"Pop"}, 215},
	}},
	{"Dua Lipa", "English and Albanian singer-songwriter", []seedSong{
		{"Levitating", []string{"Disco", "Pop"}, 203},
		{"Don't Start Now", []string{"Disco", "Pop"}, 183},
	}},
	{"Imagine Dragons", "American pop rock band", []seedSong{
		{"Believer", []string{"Alternative Rock", "Pop Rock"}, 204},
		{"Thunder", []string{"Pop Rock"}, 187},
	}},
	{"Billie Eilish", "American singer and songwriter", []seedSong{
		{"bad guy", []string{"Electropop", "Pop"}, 194},
		{"everything i wanted", []string{"Pop"}, 245},
	}},
	{"Adele", "English singer and songwriter", []seedSong{
		{"Hello", []string{"Soul", "Pop"}, 295},
		{"Rolling in the Deep", []string{"Soul", "Pop"}, 228},
	}},
	{"Coldplay", "British rock band", []seedSong{
		{"Viva La Vida", []string{"Baroque Pop", "Pop"}, 242},
		{"Fix You", []string{"Alternative Rock"}, 294},
	}},
	{"Eminem", "American rapper and producer", []seedSong{
		{"Lose Yourself", []string{"Hip Hop", "Rap"}, 326},
		{"The Real Slim Shady", []string{"Hip Hop", "Rap"}, 284},
	}},
}

// Seed populates the catalog with a starter set of artists and songs owned
// by a development user. It is idempotent: a non-empty songs table means a
// previous run (or real usage) already happened, and the routine backs off.
func Seed(ctx context.Context, songRepo SongRepository, artistRepo artists.ArtistRepository, authSvc auth.AuthService, userRepo auth.UserRepository) error {
	count, err := songRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	owner, err := ensureSeedUser(ctx, authSvc, userRepo)
	if err != nil {
		return err
	}

	var seeded int
	for _, sa := range seedCatalog {
		artist, err := getOrCreateArtist(ctx, artistRepo, sa.name, sa.description)
		if err != nil {
			return err
		}

		for _, ss := range sa.songs {
			song := &Song{
				Title:         ss.title,
				LengthSeconds: ss.lengthSeconds,
				Genres:        ss.genres,
				ArtistID:      artist.ID,
				OwnerID:       &owner.ID,
			}
			if err := songRepo.Create(ctx, song); err != nil {
				return fmt.Errorf("seeding song %q: %w", ss.title, err)
			}
			seeded++
		}
	}

	slog.Info("seeded song catalog",
		slog.Int("songs", seeded),
		slog.String("owner", owner.Username),
	)
	return nil
}

// ensureSeedUser finds or registers the development owner account.
func ensureSeedUser(ctx context.Context, authSvc auth.AuthService, userRepo auth.UserRepository) (*auth.User, error) {
	user, err := userRepo.FindByUsername(ctx, seedOwnerUsername)
	if err == nil {
		return user, nil
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		return nil, fmt.Errorf("looking up seed user: %w", err)
	}

	user, err = authSvc.Register(ctx, auth.RegisterInput{
		Username: seedOwnerUsername,
		Password: seedOwnerPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("registering seed user: %w", err)
	}
	return user, nil
}

// getOrCreateArtist reuses an existing artist by name (case-insensitively)
// or creates it.
func getOrCreateArtist(ctx context.Context, repo artists.ArtistRepository, name, description string) (*artists.Artist, error) {
	artist, err := repo.FindByName(ctx, name)
	if err == nil {
		return artist, nil
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		return nil, fmt.Errorf("looking up seed artist %q: %w", name, err)
	}

	artist = &artists.Artist{Name: name, Description: &description}
	if err := repo.Create(ctx, artist); err != nil {
		return nil, fmt.Errorf("creating seed artist %q: %w", name, err)
	}
	return artist, nil
}
