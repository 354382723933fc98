package models

import (
	"testing"

	uuid "github.com/satori/go.uuid"
)

func TestParseItemRefCached(t *testing.T) {
	ref, err := ParseItemRef("12345")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ref.Kind != ItemRefCached {
		t.Errorf("expected cached kind, got %v", ref.Kind)
	}
	if ref.CacheID != 12345 {
		t.Errorf("expected cache id 12345, got %d", ref.CacheID)
	}
	if ref.String() != "12345" {
		t.Errorf("round trip changed the ref: %q", ref.String())
	}
}

func TestParseItemRefNative(t *testing.T) {
	id := uuid.NewV4()
	ref, err := ParseItemRef(id.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ref.Kind != ItemRefNative {
		t.Errorf("expected native kind, got %v", ref.Kind)
	}
	if ref.NativeID != id {
		t.Errorf("uuid changed in parsing: %v", ref.NativeID)
	}
	if ref.String() != id.String() {
		t.Errorf("round trip changed the ref: %q", ref.String())
	}
}

func TestParseItemRefRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-ref", "12a45"} {
		if _, err := ParseItemRef(s); err == nil {
			t.Errorf("expected an error for %q", s)
		}
	}
}
