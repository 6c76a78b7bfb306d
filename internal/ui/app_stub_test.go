//go:build !fyne

package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestRunStubNamesRebuildCommand(t *testing.T) {
	err := Run("")
	if !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "-tags fyne ./cmd/pixelgallery ui [galleryRoot]") {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestRunStubKeepsGalleryRoot(t *testing.T) {
	err := Run("/srv/art")
	if err == nil || !strings.HasSuffix(err.Error(), "ui /srv/art") {
		t.Fatalf("root missing from hint: %v", err)
	}
}
