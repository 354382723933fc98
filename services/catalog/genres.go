package catalog

// Genre id to name lookup for the two taxonomies. The metadata source uses
// disjoint id spaces for several codes between films and episodic content, so
// the tables are kept separate.

var workGenres = map[int64]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

var seriesGenres = map[int64]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	10762: "Kids",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	37:    "Western",
}

// WorkGenreNames resolves genre ids to names, dropping unknown ids.
func WorkGenreNames(ids []int64) []string {
	var names []string
	for _, id := range ids {
		if name, ok := workGenres[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

func SeriesGenreNames(ids []int64) []string {
	var names []string
	for _, id := range ids {
		if name, ok := seriesGenres[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
