package realtime

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

func TestRoomRegistry_JoinAndRemoveAll(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	r.AddToRoom("101", "U1")
	r.AddToRoom("101", "U2")
	require.ElementsMatch(t, []live.Key{"U1", "U2"}, r.GetUsers("101"))

	r.RemoveUserFromAllRooms("U1")
	assert.ElementsMatch(t, []live.Key{"U2"}, r.GetUsers("101"))
}

func TestRoomRegistry_LastMemberRemovalDropsRoom(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	r.AddToRoom("101", "U1")
	r.RemoveFromRoom("101", "U1")

	assert.Empty(t, r.GetUsers("101"))
	assert.Zero(t, r.RoomCount(), "empty room must be deleted, not retained")
}

func TestRoomRegistry_RemoveUnknownIsNoOp(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	require.NotPanics(t, func() {
		r.RemoveFromRoom("ghost", "U1")
		r.RemoveUserFromAllRooms("U1")
	})
}

func TestRoomRegistry_RemoveUserFromAllRoomsSpansRooms(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	r.AddToRoom("101", "U1")
	r.AddToRoom("102", "U1")
	r.AddToRoom("102", "U2")

	r.RemoveUserFromAllRooms("U1")

	assert.Empty(t, r.GetUsers("101"))
	assert.ElementsMatch(t, []live.Key{"U2"}, r.GetUsers("102"))
	assert.Equal(t, 1, r.RoomCount(), "room 101 must be dropped once empty")
}

func TestRoomRegistry_GetConnectionCount(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	assert.Zero(t, r.GetConnectionCount("101"))

	r.AddToRoom("101", "U1")
	r.AddToRoom("101", "U2")
	r.AddToRoom("101", "U2") // idempotent

	assert.Equal(t, 2, r.GetConnectionCount("101"))
}

func TestRoomRegistry_CommaSeparatedRender(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	assert.Equal(t, "", r.GetAllUserIDsInRoomCommaSeparated("101"))

	r.AddToRoom("101", "U2")
	r.AddToRoom("101", "U1")

	assert.Equal(t, "U1,U2", r.GetAllUserIDsInRoomCommaSeparated("101"))
}

func TestRoomRegistry_FullSnapshot(t *testing.T) {
	r := NewRoomRegistry(zerolog.Nop())

	r.AddToRoom("101", "U1")
	r.AddToRoom("102", "U1")
	r.AddToRoom("102", "U2")

	snapshot := r.GetAllRoomsWithUsers()
	require.Len(t, snapshot, 2)
	assert.ElementsMatch(t, []live.Key{"U1"}, snapshot["101"])
	assert.ElementsMatch(t, []live.Key{"U1", "U2"}, snapshot["102"])
}
