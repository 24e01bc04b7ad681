package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleZipsDaysAndTimes(t *testing.T) {
	sec := &Section{Day: "SEG,QUA", Time: "08:00-10:00,10:00-12:00"}
	days, times := sec.Schedule()
	assert.Equal(t, []string{"SEG", "QUA"}, days)
	assert.Equal(t, []string{"08:00-10:00", "10:00-12:00"}, times)
}

func TestScheduleRepeatsFirstTime(t *testing.T) {
	sec := &Section{Day: "SEG,QUA,SEX", Time: "08:00-10:00"}
	days, times := sec.Schedule()
	assert.Equal(t, []string{"SEG", "QUA", "SEX"}, days)
	assert.Equal(t, []string{"08:00-10:00", "08:00-10:00", "08:00-10:00"}, times)
}

func TestScheduleMissingFields(t *testing.T) {
	for _, sec := range []*Section{
		{Day: "", Time: "08:00-10:00"},
		{Day: "SEG", Time: ""},
		{Day: " , ", Time: "08:00-10:00"},
	} {
		days, times := sec.Schedule()
		assert.Nil(t, days)
		assert.Nil(t, times)
	}
}

func TestRequiredTypesExpandsSingleType(t *testing.T) {
	sec := &Section{Day: "SEG,QUA", Time: "10:00-12:00", RoomTypes: "Sala"}
	assert.Equal(t, []string{RoomTypeTheory, RoomTypeTheory}, sec.RequiredTypes())
}

func TestRequiredTypesKeepsMultiTypeList(t *testing.T) {
	sec := &Section{Day: "SEG,QUA", Time: "10:00-12:00", RoomTypes: "Sala,Laboratório"}
	assert.Equal(t, []string{RoomTypeTheory, RoomTypeLab}, sec.RequiredTypes())
}

func TestNormalizeRoomType(t *testing.T) {
	assert.Equal(t, RoomTypeTheory, NormalizeRoomType("sala"))
	assert.Equal(t, RoomTypeTheory, NormalizeRoomType(" SL "))
	assert.Equal(t, RoomTypeLab, NormalizeRoomType("LAB"))
	assert.Equal(t, RoomTypeLab, NormalizeRoomType("Laboratorio"))
	assert.Equal(t, RoomTypeAuditorium, NormalizeRoomType("auditório"))
	assert.Equal(t, RoomTypeUnknown, NormalizeRoomType(""))
	assert.Equal(t, RoomTypeUnknown, NormalizeRoomType("quadra"))
}

func TestHasBoardMarker(t *testing.T) {
	room := &Classroom{BoardType: "Quadro de GIZ"}
	assert.True(t, room.HasBoardMarker("giz"))
	assert.False(t, room.HasBoardMarker("branco"))
	assert.False(t, room.HasBoardMarker(""))
}

func TestScheduleIndexAlignment(t *testing.T) {
	sections := map[string]*Section{
		// SEG 08:00 and QUA 10:00, never SEG 10:00 or QUA 08:00.
		"A": {Key: "A", Day: "SEG,QUA", Time: "08:00-10:00,10:00-12:00"},
		"B": {Key: "B", Day: "SEG", Time: "08:00-10:00"},
	}
	ix := NewScheduleIndex(sections)

	require.Len(t, ix.Slots(), 2)
	assert.Equal(t, []string{"A"}, ix.SectionsAt("QUA", "10:00-12:00"))
	assert.ElementsMatch(t, []string{"A", "B"}, ix.SectionsAt("SEG", "08:00-10:00"))
	assert.Empty(t, ix.SectionsAt("SEG", "10:00-12:00"))
	assert.Empty(t, ix.SectionsAt("QUA", "08:00-10:00"))
}

func TestScheduleIndexDeduplicatesRepeatedSlots(t *testing.T) {
	sections := map[string]*Section{
		"A": {Key: "A", Day: "SEG,SEG", Time: "08:00-10:00"},
	}
	ix := NewScheduleIndex(sections)
	require.Len(t, ix.Slots(), 1)
	assert.Equal(t, []string{"A"}, ix.SectionsAt("SEG", "08:00-10:00"))
}
