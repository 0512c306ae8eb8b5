package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sriram-PR/sitemap-gen/pkg/models"
)

func imageKey(i models.Image) string { return i.Loc }

func overlayImage(prev, next models.Image) models.Image { return prev.Overlay(next) }

func TestLastWinsMerge_Empty(t *testing.T) {
	got := LastWinsMerge(nil, imageKey, overlayImage)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLastWinsMerge_DistinctKeysUnchanged(t *testing.T) {
	items := []models.Image{{Loc: "/c.jpg"}, {Loc: "/a.jpg"}, {Loc: "/b.jpg", Caption: "b"}}
	assert.Equal(t, items, LastWinsMerge(items, imageKey, overlayImage))
}

func TestLastWinsMerge_RepeatedKey(t *testing.T) {
	items := []models.Image{
		{Loc: "/a.jpg", Title: "first", License: "cc"},
		{Loc: "/b.jpg"},
		{Loc: "/a.jpg", Title: "second", Caption: "x"},
	}

	got := LastWinsMerge(items, imageKey, overlayImage)

	assert.Equal(t, []models.Image{
		{Loc: "/a.jpg", Title: "second", Caption: "x", License: "cc"},
		{Loc: "/b.jpg"},
	}, got)
}

func TestLastWinsMerge_DoesNotMutateInput(t *testing.T) {
	items := []models.Image{{Loc: "/a.jpg"}, {Loc: "/a.jpg", Caption: "x"}}
	LastWinsMerge(items, imageKey, overlayImage)
	assert.Empty(t, items[0].Caption)
}

func TestFirstWinsDedup(t *testing.T) {
	items := []models.Image{
		{Loc: "/a.jpg", Caption: "first"},
		{Loc: "/b.jpg"},
		{Loc: "/a.jpg", Caption: "second"},
	}

	got := FirstWinsDedup(items, imageKey)

	assert.Equal(t, []models.Image{{Loc: "/a.jpg", Caption: "first"}, {Loc: "/b.jpg"}}, got)
	assert.Empty(t, FirstWinsDedup([]models.Image(nil), imageKey))
}
