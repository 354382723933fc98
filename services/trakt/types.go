package trakt

// IDs carries the cross-reference ids a ranked item exposes. TMDB is the
// metadata source's namespace and may be absent.
type IDs struct {
	Trakt int64  `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb"`
	TMDB  *int64 `json:"tmdb"`
}

// Movie is the ranking source's film record.
type Movie struct {
	Title    string   `json:"title"`
	Year     *int     `json:"year"`
	IDs      IDs      `json:"ids"`
	Overview *string  `json:"overview"`
	Rating   *float64 `json:"rating"`
	Votes    *int     `json:"votes"`
	Language *string  `json:"language"`
	Runtime  *int     `json:"runtime"`
}

// Show is the ranking source's episodic record.
type Show struct {
	Title    string   `json:"title"`
	Year     *int     `json:"year"`
	IDs      IDs      `json:"ids"`
	Overview *string  `json:"overview"`
	Rating   *float64 `json:"rating"`
	Votes    *int     `json:"votes"`
	Language *string  `json:"language"`
	Status   *string  `json:"status"`
}

type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

type User struct {
	Username string  `json:"username"`
	Name     *string `json:"name"`
	IDs      struct {
		Slug string `json:"slug"`
	} `json:"ids"`
}
