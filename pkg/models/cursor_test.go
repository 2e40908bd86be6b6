package models

import "testing"

func TestStartCursor(t *testing.T) {
	c := StartCursor()

	if !c.IsStart() {
		t.Error("expected start cursor")
	}
	if c.IsEnd() {
		t.Error("start cursor must not be end")
	}
	if c.String() != "" {
		t.Errorf("expected empty string form, got %q", c.String())
	}
}

func TestNextCursor(t *testing.T) {
	c := NextCursor("DAABCgABGg")

	if c.IsStart() || c.IsEnd() {
		t.Error("cursor with a value must be neither start nor end")
	}
	if c.String() != "DAABCgABGg" {
		t.Errorf("expected cursor value, got %q", c.String())
	}
}

func TestNextCursorEmptyValueMeansEnd(t *testing.T) {
	c := NextCursor("")

	if !c.IsEnd() {
		t.Error("empty cursor value must mean end of stream")
	}
}

func TestEndCursor(t *testing.T) {
	c := EndCursor()

	if !c.IsEnd() {
		t.Error("expected end cursor")
	}
	if c.IsStart() {
		t.Error("end cursor must not be start")
	}
	if c.String() != "" {
		t.Errorf("expected empty string form, got %q", c.String())
	}
}
