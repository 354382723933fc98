package catalog

import (
	"github.com/pkg/errors"
)

// Kind names the two catalog entity kinds.
type Kind string

const (
	KindWork   Kind = "work"
	KindSeries Kind = "series"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWork:
		return KindWork, nil
	case KindSeries:
		return KindSeries, nil
	}
	return "", errors.Errorf("unknown kind %q", s)
}

func errUnknownKind(k Kind) error {
	return errors.Errorf("unknown kind %q", k)
}

// Well-known list names. Any name the ranking source serves is accepted;
// these are the ones refreshed by default.
const (
	ListTrending = "trending"
	ListPopular  = "popular"
)
