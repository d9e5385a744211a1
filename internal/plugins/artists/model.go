// Package artists manages the artist catalog: the performers songs refer to.
// Artist names are unique case-insensitively, and an artist cannot be deleted
// while songs still reference it.
package artists

// Artist represents a performer in the catalog. Description is optional.
type Artist struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ArtistRequest holds the data submitted to create or update an artist.
type ArtistRequest struct {
	Name        string  `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

// ArtistInput is the validated input passed from handler to service.
type ArtistInput struct {
	Name        string
	Description *string
}

// ArtistRef is the compact artist reference embedded in song responses.
type ArtistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
