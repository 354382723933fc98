package catalog

import (
	"strconv"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/tmdb"
	"github.com/strmhub-io/catalog/services/trakt"
)

// certificationCountry is the locale whose certification entry is picked from
// the metadata source's rating sub-resources.
const certificationCountry = "US"

// MergeWork combines a ranking-source movie with optional metadata-source
// detail into one cache record. Metadata fields win field by field when
// present; ranking fields are the fallback; documented defaults (empty
// string, zero rating) apply when neither side has a value. Ratings from both
// upstreams are on the 0-10 scale and are stored as-is.
func MergeWork(m trakt.Movie, d *tmdb.MovieDetails, r *tmdb.MovieReleases) *models.Work {
	w := &models.Work{
		ID:               workKey(m, d),
		Title:            m.Title,
		Overview:         m.Overview,
		Rating:           coalesceFloat(m.Rating, 0),
		Votes:            coalesceInt(m.Votes, 0),
		OriginalLanguage: coalesceString(m.Language, "en"),
		OriginalTitle:    m.Title,
		TraktID:          m.IDs.Trakt,
	}
	if m.IDs.Slug != "" {
		slug := m.IDs.Slug
		w.TraktSlug = &slug
	}
	if m.Year != nil {
		year := strconv.Itoa(*m.Year)
		w.ReleaseDate = &year
	}
	if d == nil {
		return w
	}
	w.Title = d.Title
	if d.Overview != nil {
		w.Overview = d.Overview
	}
	if d.ReleaseDate != nil {
		w.ReleaseDate = d.ReleaseDate
	}
	w.PosterPath = d.PosterPath
	w.BackdropPath = d.BackdropPath
	if d.VoteAverage != nil {
		w.Rating = *d.VoteAverage
	}
	if d.VoteCount != nil {
		w.Votes = *d.VoteCount
	}
	w.GenreIDs = genreIDs(d.Genres)
	if d.OriginalLanguage != nil {
		w.OriginalLanguage = *d.OriginalLanguage
	}
	if d.OriginalTitle != nil {
		w.OriginalTitle = *d.OriginalTitle
	}
	if d.Popularity != nil {
		w.Popularity = *d.Popularity
	}
	w.Runtime = d.Runtime
	w.Certification = certificationFromReleases(r)
	if d.BelongsToCollection != nil {
		id := d.BelongsToCollection.ID
		name := d.BelongsToCollection.Name
		w.CollectionID = &id
		w.CollectionName = &name
	}
	return w
}

// MergeSeries is the episodic counterpart of MergeWork.
func MergeSeries(sh trakt.Show, d *tmdb.ShowDetails, cr *tmdb.ShowContentRatings) *models.Series {
	s := &models.Series{
		ID:               seriesKey(sh, d),
		Name:             sh.Title,
		Overview:         sh.Overview,
		Rating:           coalesceFloat(sh.Rating, 0),
		Votes:            coalesceInt(sh.Votes, 0),
		OriginalLanguage: coalesceString(sh.Language, "en"),
		OriginalName:     sh.Title,
		Status:           sh.Status,
		TraktID:          sh.IDs.Trakt,
	}
	if sh.IDs.Slug != "" {
		slug := sh.IDs.Slug
		s.TraktSlug = &slug
	}
	if sh.Year != nil {
		year := strconv.Itoa(*sh.Year)
		s.FirstAirDate = &year
	}
	if d == nil {
		return s
	}
	s.Name = d.Name
	if d.Overview != nil {
		s.Overview = d.Overview
	}
	if d.FirstAirDate != nil {
		s.FirstAirDate = d.FirstAirDate
	}
	s.LastAirDate = d.LastAirDate
	s.PosterPath = d.PosterPath
	s.BackdropPath = d.BackdropPath
	if d.VoteAverage != nil {
		s.Rating = *d.VoteAverage
	}
	if d.VoteCount != nil {
		s.Votes = *d.VoteCount
	}
	s.GenreIDs = genreIDs(d.Genres)
	if d.OriginalLanguage != nil {
		s.OriginalLanguage = *d.OriginalLanguage
	}
	if d.OriginalName != nil {
		s.OriginalName = *d.OriginalName
	}
	if d.Popularity != nil {
		s.Popularity = *d.Popularity
	}
	if d.Status != nil {
		s.Status = d.Status
	}
	s.SeasonCount = d.NumberOfSeasons
	s.EpisodeCount = d.NumberOfEpisodes
	s.Certification = certificationFromRatings(cr)
	return s
}

// MapWorkCredits converts a credits payload into cast rows for one work.
func MapWorkCredits(workID int64, c *tmdb.Credits) []*models.CastMember {
	if c == nil {
		return nil
	}
	cast := make([]*models.CastMember, 0, len(c.Cast))
	for i, cc := range c.Cast {
		cast = append(cast, &models.CastMember{
			WorkID:      workID,
			PersonID:    cc.PersonID,
			CreditID:    cc.CreditID,
			Name:        cc.Name,
			Character:   cc.Character,
			Ord:         i,
			ProfilePath: cc.ProfilePath,
			Department:  "Acting",
		})
	}
	return cast
}

func MapSeriesCredits(seriesID int64, c *tmdb.Credits) []*models.SeriesCastMember {
	if c == nil {
		return nil
	}
	cast := make([]*models.SeriesCastMember, 0, len(c.Cast))
	for i, cc := range c.Cast {
		cast = append(cast, &models.SeriesCastMember{
			SeriesID:    seriesID,
			PersonID:    cc.PersonID,
			CreditID:    cc.CreditID,
			Name:        cc.Name,
			Character:   cc.Character,
			Ord:         i,
			ProfilePath: cc.ProfilePath,
			Department:  "Acting",
		})
	}
	return cast
}

// certificationFromReleases picks the first non-empty certification for the
// target locale, nil when absent.
func certificationFromReleases(r *tmdb.MovieReleases) *string {
	if r == nil {
		return nil
	}
	for _, country := range r.Results {
		if country.CountryCode != certificationCountry {
			continue
		}
		for _, rd := range country.ReleaseDates {
			if rd.Certification != "" {
				cert := rd.Certification
				return &cert
			}
		}
	}
	return nil
}

func certificationFromRatings(cr *tmdb.ShowContentRatings) *string {
	if cr == nil {
		return nil
	}
	for _, r := range cr.Results {
		if r.CountryCode == certificationCountry && r.Rating != "" {
			rating := r.Rating
			return &rating
		}
	}
	return nil
}

// workKey picks the stable primary key: the metadata namespace id wins, the
// ranking id is the last resort.
func workKey(m trakt.Movie, d *tmdb.MovieDetails) int64 {
	if d != nil {
		return d.ID
	}
	if m.IDs.TMDB != nil {
		return *m.IDs.TMDB
	}
	return m.IDs.Trakt
}

func seriesKey(sh trakt.Show, d *tmdb.ShowDetails) int64 {
	if d != nil {
		return d.ID
	}
	if sh.IDs.TMDB != nil {
		return *sh.IDs.TMDB
	}
	return sh.IDs.Trakt
}

func genreIDs(genres []tmdb.Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func coalesceString(p *string, def string) string {
	if p != nil && *p != "" {
		return *p
	}
	return def
}

func coalesceFloat(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func coalesceInt(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}
