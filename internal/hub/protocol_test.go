package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	payload, err := encodeFrame(OpSendLiveCoordinates, "track-12", int64(12), "53.34,-6.26", true)
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(payload, &frame))
	require.Equal(t, OpSendLiveCoordinates, frame.Target)

	var (
		room    string
		id      int64
		latLong string
		dead    bool
	)
	require.NoError(t, decodeArgs(frame, &room, &id, &latLong, &dead))
	assert.Equal(t, "track-12", room)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, "53.34,-6.26", latLong)
	assert.True(t, dead)
}

func TestDecodeArgs_MissingTrailingArgsAreZero(t *testing.T) {
	payload, err := encodeFrame(OpSendGoogleDirectionPath, "track-12", int64(12))
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(payload, &frame))

	var (
		room string
		id   int64
		path string
		eta  string
	)
	require.NoError(t, decodeArgs(frame, &room, &id, &path, &eta))
	assert.Equal(t, "track-12", room)
	assert.Empty(t, path, "omitted optional argument must stay zero")
	assert.Empty(t, eta)
}

func TestDecodeArgs_TooManyArgumentsRejected(t *testing.T) {
	payload, err := encodeFrame(OpJoinRoom, "101", "extra")
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(payload, &frame))

	var room string
	err = decodeArgs(frame, &room)
	assert.ErrorContains(t, err, "too many arguments")
}

func TestDecodeArgs_TypeMismatchRejected(t *testing.T) {
	payload, err := encodeFrame(OpSendLiveCoordinates, "track-12", "not-a-number")
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(payload, &frame))

	var room string
	var id int64
	err = decodeArgs(frame, &room, &id)
	assert.ErrorContains(t, err, "bad argument 1")
}
