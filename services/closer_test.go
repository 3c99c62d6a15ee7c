package services

import (
	"testing"

	"lottery-publish-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closerItems() []models.GameItem {
	return []models.GameItem{
		{ID: "i1", Number: "01"},
		{ID: "i2", Number: "02"},
		{ID: "i3", Number: "03"},
	}
}

func TestFilterUnused(t *testing.T) {
	filtered := FilterUnused(closerItems(), map[string]bool{"i2": true})

	require.Len(t, filtered, 2)
	assert.Equal(t, "i1", filtered[0].ID)
	assert.Equal(t, "i3", filtered[1].ID)
}

func TestFilterUnusedEmptySet(t *testing.T) {
	items := closerItems()
	assert.Equal(t, items, FilterUnused(items, nil))
}

func TestPickPreselectionAvoidsUsedItems(t *testing.T) {
	used := map[string]bool{"i1": true, "i3": true}

	for i := 0; i < 50; i++ {
		pick := PickPreselection(closerItems(), used)
		require.NotNil(t, pick)
		assert.Equal(t, "i2", pick.ID)
	}
}

func TestPickPreselectionFallsBackWhenAllUsed(t *testing.T) {
	used := map[string]bool{"i1": true, "i2": true, "i3": true}

	pick := PickPreselection(closerItems(), used)
	require.NotNil(t, pick)
	assert.Contains(t, []string{"i1", "i2", "i3"}, pick.ID)
}

func TestPickPreselectionEmptyItems(t *testing.T) {
	assert.Nil(t, PickPreselection(nil, nil))
}
