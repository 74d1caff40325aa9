package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyAnnouncements_StableSort(t *testing.T) {
	var items []Announcement
	add := func(method string, n int) {
		for i := 0; i < n; i++ {
			items = append(items, Announcement{MethodLabel: method})
		}
	}
	add("Method C", 1)
	add("Method A", 5)
	add("Method B", 5)
	add("Method C", 1)

	tally := TallyAnnouncements(items)

	assert.Equal(t, []MethodCount{
		{Method: "Method A", Count: 5},
		{Method: "Method B", Count: 5},
		{Method: "Method C", Count: 2},
	}, tally.Sorted())
	assert.Equal(t, 12, tally.Total())
	assert.Equal(t, 5, tally.Count("Method B"))
}

func TestTallyAnnouncements_DefaultLabel(t *testing.T) {
	tally := TallyAnnouncements([]Announcement{{MethodLabel: ""}, {MethodLabel: "X"}, {}})
	assert.Equal(t, 2, tally.Count(UnspecifiedLabel))
	assert.Equal(t, 3, tally.Total())
}

func TestAnnouncementTally_Nil(t *testing.T) {
	var tally *AnnouncementTally
	assert.Nil(t, tally.Sorted())
	assert.Equal(t, 0, tally.Total())
}
