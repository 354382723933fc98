package models

import (
	"strconv"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// ItemRefKind discriminates the two identifier spaces an item reference may
// live in: the playback server addresses items by UUID, the local catalog
// cache by numeric key.
type ItemRefKind int

const (
	ItemRefNative ItemRefKind = iota
	ItemRefCached
)

// ItemRef is a tagged reference to either a native playback-server item or a
// cached catalog item. It replaces the older convention of embedding cache
// keys inside fake UUID strings; resolution happens at the boundary via
// ParseItemRef, nowhere else.
type ItemRef struct {
	Kind     ItemRefKind
	NativeID uuid.UUID
	CacheID  int64
}

func NativeRef(id uuid.UUID) ItemRef {
	return ItemRef{Kind: ItemRefNative, NativeID: id}
}

func CachedRef(id int64) ItemRef {
	return ItemRef{Kind: ItemRefCached, CacheID: id}
}

// ParseItemRef accepts either a UUID (native item) or a decimal integer
// (cached item).
func ParseItemRef(s string) (ItemRef, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return CachedRef(id), nil
	}
	if id, err := uuid.FromString(s); err == nil {
		return NativeRef(id), nil
	}
	return ItemRef{}, errors.Errorf("invalid item ref %q", s)
}

func (r ItemRef) String() string {
	if r.Kind == ItemRefNative {
		return r.NativeID.String()
	}
	return strconv.FormatInt(r.CacheID, 10)
}
