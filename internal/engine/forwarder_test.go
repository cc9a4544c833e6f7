package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/roomhub/internal/protocol"
)

// runForwarder runs fn and reports whether it returned before the timeout.
func runForwarder(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not terminate")
	}
}

func TestRoomForwarder_ExitsOnClosedSubscription(t *testing.T) {
	e := testEngine()
	c := e.CreateClient(newChanSink())
	room := e.CreateRoom(c.ID())
	room.AddClient(c.ID())

	sub := room.Listener()
	sub.Close()

	runForwarder(t, func() { c.runRoomForwarder(room.ID(), sub) })
}

func TestRoomForwarder_ExitsOnOwnRoomExit(t *testing.T) {
	e := testEngine()
	sink := newChanSink()
	c := e.CreateClient(sink)
	room := e.CreateRoom(c.ID())
	room.AddClient(c.ID())

	sub := room.Listener()
	room.publishEvent(protocol.EventRoomExit, protocol.RoomExitFrame(c.ID(), room.ID()), c.ID())

	runForwarder(t, func() { c.runRoomForwarder(room.ID(), sub) })

	// The exit signal itself is not delivered to the exiting client.
	sink.expectNone(t)
}

func TestRoomForwarder_DeliversOthersRoomExit(t *testing.T) {
	e := testEngine()
	sink := newChanSink()
	c := e.CreateClient(sink)
	leaver := uuid.New()
	room := e.CreateRoom(c.ID())
	room.AddClient(c.ID())

	sub := room.Listener()
	go c.runRoomForwarder(room.ID(), sub)

	room.publishEvent(protocol.EventRoomExit, protocol.RoomExitFrame(leaver, room.ID()), leaver)

	event := sink.nextEvent(t)
	if event["type"] != "ROOM_EXIT" {
		t.Errorf("event type = %v, want ROOM_EXIT", event["type"])
	}
	if event["client_id"] != leaver.String() {
		t.Errorf("client_id = %v, want %v", event["client_id"], leaver)
	}
}

func TestRoomForwarder_ExitsOnMembershipLoss(t *testing.T) {
	e := testEngine()
	sink := newChanSink()
	c := e.CreateClient(sink)
	other := uuid.New()
	room := e.CreateRoom(c.ID())
	room.AddClient(other) // forwarder's client is not a member

	sub := room.Listener()
	room.publishMessage(other, `{"msg":"hi"}`)

	runForwarder(t, func() { c.runRoomForwarder(room.ID(), sub) })
	sink.expectNone(t)
}

func TestRoomForwarder_ExitsOnUnresolvableClient(t *testing.T) {
	e := testEngine()
	sink := newChanSink()
	c := e.CreateClient(sink)
	other := uuid.New()
	room := e.CreateRoom(c.ID())
	room.AddClient(c.ID())
	room.AddClient(other)

	// The client vanishes from the registry while still a room member.
	e.RemoveClient(c.ID())
	room.AddClient(c.ID())

	sub := room.Listener()
	room.publishMessage(other, `{"msg":"hi"}`)

	runForwarder(t, func() { c.runRoomForwarder(room.ID(), sub) })
	sink.expectNone(t)
}

func TestRoomForwarder_ExitsOnLagEviction(t *testing.T) {
	e := New(Config{RoomTopicDepth: 1, DirectoryTopicDepth: 1}, testLogger())
	sink := newChanSink()
	c := e.CreateClient(sink)
	other := uuid.New()
	room := e.CreateRoom(c.ID())
	room.AddClient(c.ID())
	room.AddClient(other)

	// Overflow the subscription before the forwarder starts draining it.
	sub := room.Listener()
	room.publishMessage(other, `{"msg":"first"}`)
	room.publishMessage(other, `{"msg":"evicts"}`)

	runForwarder(t, func() { c.runRoomForwarder(room.ID(), sub) })

	// The buffered message is still delivered before the lag terminates
	// the forwarder; the overflowing one is lost for good.
	got := sink.next(t)
	if got["msg"] != "first" {
		t.Errorf("delivered msg = %v, want first", got["msg"])
	}
	sink.expectNone(t)
}

func TestDirectoryForwarder_ExitsOnClosedSubscription(t *testing.T) {
	e := testEngine()
	c := e.CreateClient(newChanSink())
	c.dirSubscribed.Store(true)

	sub := e.DirectoryListener()
	sub.Close()

	runForwarder(t, func() { c.runDirectoryForwarder(sub) })
}

func TestDirectoryForwarder_ExitsOnUnresolvableClient(t *testing.T) {
	e := testEngine()
	c := e.CreateClient(newChanSink())
	c.dirSubscribed.Store(true)
	e.RemoveClient(c.ID())

	sub := e.DirectoryListener()
	sub2 := e.DirectoryListener() // keep the topic from reporting zero subscribers
	defer sub2.Close()
	e.CreateRoom(uuid.New())

	runForwarder(t, func() { c.runDirectoryForwarder(sub) })
}

func TestDirectoryForwarder_ExitsOnClearedFlag(t *testing.T) {
	e := testEngine()
	sink := newChanSink()
	c := e.CreateClient(sink)
	c.dirSubscribed.Store(false)

	sub := e.DirectoryListener()
	e.CreateRoom(uuid.New())

	// One final event is delivered before the flag is observed.
	runForwarder(t, func() { c.runDirectoryForwarder(sub) })

	event := sink.nextEvent(t)
	if event["type"] != "ROOM_CREATION" {
		t.Errorf("event type = %v, want ROOM_CREATION", event["type"])
	}
}

// publishMessage is a test helper publishing a raw data broadcast.
func (r *Room) publishMessage(sender uuid.UUID, data string) {
	r.broadcast(json.RawMessage(data), sender)
}
