package tmdb

// Only the fields the cache consumes are declared; everything else in the
// upstream payloads is ignored.

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Collection struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MovieDetails struct {
	ID                  int64       `json:"id"`
	Title               string      `json:"title"`
	Overview            *string     `json:"overview"`
	ReleaseDate         *string     `json:"release_date"`
	PosterPath          *string     `json:"poster_path"`
	BackdropPath        *string     `json:"backdrop_path"`
	VoteAverage         *float64    `json:"vote_average"`
	VoteCount           *int        `json:"vote_count"`
	Genres              []Genre     `json:"genres"`
	OriginalLanguage    *string     `json:"original_language"`
	OriginalTitle       *string     `json:"original_title"`
	Popularity          *float64    `json:"popularity"`
	Runtime             *int        `json:"runtime"`
	BelongsToCollection *Collection `json:"belongs_to_collection"`
}

type ShowDetails struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Overview         *string  `json:"overview"`
	FirstAirDate     *string  `json:"first_air_date"`
	LastAirDate      *string  `json:"last_air_date"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        *int     `json:"vote_count"`
	Genres           []Genre  `json:"genres"`
	OriginalLanguage *string  `json:"original_language"`
	OriginalName     *string  `json:"original_name"`
	Popularity       *float64 `json:"popularity"`
	Status           *string  `json:"status"`
	NumberOfSeasons  *int     `json:"number_of_seasons"`
	NumberOfEpisodes *int     `json:"number_of_episodes"`
}

type ReleaseDate struct {
	Certification string `json:"certification"`
}

type CountryReleases struct {
	CountryCode  string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

type MovieReleases struct {
	Results []CountryReleases `json:"results"`
}

type ContentRating struct {
	CountryCode string `json:"iso_3166_1"`
	Rating      string `json:"rating"`
}

type ShowContentRatings struct {
	Results []ContentRating `json:"results"`
}

type CastCredit struct {
	CreditID    string  `json:"credit_id"`
	PersonID    int64   `json:"id"`
	Name        string  `json:"name"`
	Character   *string `json:"character"`
	Order       int     `json:"order"`
	ProfilePath *string `json:"profile_path"`
}

type Credits struct {
	Cast []CastCredit `json:"cast"`
}

type CollectionDetails struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Overview *string `json:"overview"`
	Parts    []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"parts"`
}
