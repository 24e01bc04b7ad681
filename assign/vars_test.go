package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarKeyRoundTrip(t *testing.T) {
	keys := []VarKey{
		AssignmentVar("F3014", "MC102A", "SEG", "08:00-10:00"),
		CapacitySlackVar("F3014", "MC102A"),
		RoomOverrunVar("F3014"),
	}
	for _, key := range keys {
		parsed, err := ParseVarKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}
}

func TestVarKeyStrings(t *testing.T) {
	assert.Equal(t, "F3014_MC102A_SEG_08:00-10:00", AssignmentVar("F3014", "MC102A", "SEG", "08:00-10:00").String())
	assert.Equal(t, "CapDiff_F3014_MC102A", CapacitySlackVar("F3014", "MC102A").String())
	assert.Equal(t, "PNC_F3014", RoomOverrunVar("F3014").String())
}

func TestParseVarKeyRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"F3014_MC102A_SEG",
		"F3014_MC102A_SEG_08:00_extra",
		"CapDiff_F3014",
		"CapDiff_F3014_MC102A_SEG",
		"PNC_F3014_MC102A",
	} {
		_, err := ParseVarKey(s)
		assert.Error(t, err, s)
	}
}

func TestEncodeDecodeValue(t *testing.T) {
	entry := EncodeValue("PNC_F3014", 12)
	assert.Equal(t, "PNC_F3014#12", entry)

	name, value, err := DecodeValue(entry)
	require.NoError(t, err)
	assert.Equal(t, "PNC_F3014", name)
	assert.Equal(t, 12.0, value)

	_, _, err = DecodeValue("PNC_F3014")
	assert.Error(t, err)
	_, _, err = DecodeValue("PNC_F3014#twelve")
	assert.Error(t, err)
}
