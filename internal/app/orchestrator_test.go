package app

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) received(frame core.Frame) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, fr := range f.frames {
		if bytes.Equal(fr, frame) {
			n++
		}
	}
	return n
}

func newTestOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    core.NewRoomManager(time.Hour, time.Hour),
		Policy:   SimplePolicy{},
	}
}

func connect(t *testing.T, o *Orchestrator, sid core.SessionID) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	o.Registry.Bind(sid, conn, func() {})
	return conn
}

func TestJoinRejectsMissingFields(t *testing.T) {
	o := newTestOrchestrator()
	room := o.Rooms.CreateRoom()
	connect(t, o, "sid-1")

	if _, err := o.Join("sid-1", room.Room().ID, "", nil); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty name: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := o.Join("sid-1", "", "Alice", nil); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty room: expected ErrInvalidRequest, got %v", err)
	}
	if _, ok := o.Registry.RoomOf("sid-1"); ok {
		t.Error("failed join must not register the session anywhere")
	}
	if room.MemberCount() != 0 {
		t.Error("failed join mutated the room roster")
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	o := newTestOrchestrator()
	connect(t, o, "sid-1")

	if _, err := o.Join("sid-1", "no-such-room", "Alice", nil); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, ok := o.Registry.RoomOf("sid-1"); ok {
		t.Error("unknown-room join must leave the registry untouched")
	}
}

func TestJoinAssignsPaletteColor(t *testing.T) {
	o := newTestOrchestrator()
	room := o.Rooms.CreateRoom()
	connect(t, o, "sid-1")

	res, err := o.Join("sid-1", room.Room().ID, "Alice", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	inPalette := false
	for _, c := range domain.Palette {
		if res.Color == c {
			inPalette = true
			break
		}
	}
	if !inPalette {
		t.Errorf("assigned color %q not from the palette", res.Color)
	}
	if len(res.Snapshot.Participants) != 1 || res.Snapshot.Participants[0].Color != res.Color {
		t.Errorf("snapshot roster does not match assigned color: %+v", res.Snapshot.Participants)
	}
}

func TestStrokeForUnknownRoomIsSilentDrop(t *testing.T) {
	o := newTestOrchestrator()
	if o.Stroke("sid-1", "no-such-room", domain.Stroke{}, core.Frame(`s`)) {
		t.Error("stroke against unknown room reported success")
	}
}

func TestWhiteboardScenario(t *testing.T) {
	o := newTestOrchestrator()
	room := o.Rooms.CreateRoom()
	roomID := room.Room().ID

	aliceConn := connect(t, o, "sid-alice")
	bobConn := connect(t, o, "sid-bob")
	connect(t, o, "sid-carol")

	if _, err := o.Join("sid-alice", roomID, "Alice", nil); err != nil {
		t.Fatalf("alice join: %v", err)
	}
	if _, err := o.Join("sid-bob", roomID, "Bob", nil); err != nil {
		t.Fatalf("bob join: %v", err)
	}

	stroke := core.Frame(`{"type":"remote-stroke"}`)
	if !o.Stroke("sid-alice", roomID, domain.Stroke{Color: "#111"}, stroke) {
		t.Fatal("stroke dropped")
	}
	if bobConn.received(stroke) != 1 {
		t.Error("bob did not receive alice's stroke")
	}
	if aliceConn.received(stroke) != 0 {
		t.Error("alice received her own stroke back")
	}

	clear := core.Frame(`{"type":"clear-board"}`)
	if !o.Clear(roomID, clear) {
		t.Fatal("clear dropped")
	}
	if aliceConn.received(clear) != 1 || bobConn.received(clear) != 1 {
		t.Error("clear must reach both members exactly once")
	}

	res, err := o.Join("sid-carol", roomID, "Carol", nil)
	if err != nil {
		t.Fatalf("carol join: %v", err)
	}
	if len(res.Snapshot.Strokes) != 0 || len(res.Snapshot.Shapes) != 0 {
		t.Error("carol's snapshot should be empty after clear")
	}
	if len(res.Snapshot.Participants) != 3 {
		t.Errorf("expected 3 participants, got %d", len(res.Snapshot.Participants))
	}
}

func TestDisconnectCleansUpExactlyOnce(t *testing.T) {
	o := newTestOrchestrator()
	r1 := o.Rooms.CreateRoom()
	r2 := o.Rooms.CreateRoom()

	connect(t, o, "sid-alice")
	connect(t, o, "sid-bob")
	connect(t, o, "sid-carol")
	if _, err := o.Join("sid-alice", r1.Room().ID, "Alice", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("sid-bob", r1.Room().ID, "Bob", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("sid-carol", r2.Room().ID, "Carol", nil); err != nil {
		t.Fatal(err)
	}

	departures := o.Disconnect("sid-alice")
	if len(departures) != 1 {
		t.Fatalf("expected exactly one departure, got %d", len(departures))
	}
	d := departures[0]
	if d.RoomID != r1.Room().ID || d.Participant.Name != "Alice" {
		t.Errorf("unexpected departure %+v", d)
	}
	if len(d.Remaining) != 1 || d.Remaining[0].Name != "Bob" {
		t.Errorf("unexpected remaining roster %+v", d.Remaining)
	}
	if r2.MemberCount() != 1 {
		t.Error("disconnect touched an unrelated room")
	}
	if got := o.Disconnect("sid-alice"); len(got) != 0 {
		t.Errorf("second disconnect produced %d departures", len(got))
	}
}

func TestDisconnectWithoutJoinIsQuiet(t *testing.T) {
	o := newTestOrchestrator()
	connect(t, o, "sid-lurker")
	if got := o.Disconnect("sid-lurker"); len(got) != 0 {
		t.Errorf("expected no departures, got %d", len(got))
	}
	if o.Registry.Len() != 0 {
		t.Error("disconnect must unbind the session")
	}
}

func TestJoinSwitchesRoom(t *testing.T) {
	o := newTestOrchestrator()
	r1 := o.Rooms.CreateRoom()
	r2 := o.Rooms.CreateRoom()
	connect(t, o, "sid-alice")

	if _, err := o.Join("sid-alice", r1.Room().ID, "Alice", nil); err != nil {
		t.Fatal(err)
	}
	res, err := o.Join("sid-alice", r2.Room().ID, "Alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Left == nil || res.Left.RoomID != r1.Room().ID {
		t.Errorf("expected departure from first room, got %+v", res.Left)
	}
	if r1.MemberCount() != 0 || r2.MemberCount() != 1 {
		t.Errorf("rosters wrong after switch: r1=%d r2=%d", r1.MemberCount(), r2.MemberCount())
	}
	if roomID, _ := o.Registry.RoomOf("sid-alice"); roomID != r2.Room().ID {
		t.Errorf("registry points at %s", roomID)
	}
}

// reapingFactory drops the target room from the store after its first
// lookup, like a reaper sweep landing between lookup and join.
type reapingFactory struct {
	core.RoomFactory
	target  domain.RoomID
	lookups int
}

func (f *reapingFactory) GetRoom(id domain.RoomID) (core.RoomService, bool) {
	if id == f.target {
		f.lookups++
		if f.lookups > 1 {
			return nil, false
		}
	}
	return f.RoomFactory.GetRoom(id)
}

func TestJoinRolledBackWhenRoomReapedMidJoin(t *testing.T) {
	o := newTestOrchestrator()
	room := o.Rooms.CreateRoom()
	o.Rooms = &reapingFactory{RoomFactory: o.Rooms, target: room.Room().ID}
	connect(t, o, "sid-1")

	_, err := o.Join("sid-1", room.Room().ID, "Alice", nil)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if room.MemberCount() != 0 {
		t.Error("member stranded on the reaped room's roster")
	}
	if _, ok := o.Registry.RoomOf("sid-1"); ok {
		t.Error("registry points at a reaped room")
	}
}

func TestBackpressureKicksSlowPeer(t *testing.T) {
	o := newTestOrchestrator()
	room := o.Rooms.CreateRoom()
	roomID := room.Room().ID

	connect(t, o, "sid-alice")
	slow := &fakeConn{fail: true}
	kicked := false
	o.Registry.Bind("sid-bob", slow, func() { kicked = true })

	if _, err := o.Join("sid-alice", roomID, "Alice", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("sid-bob", roomID, "Bob", nil); err != nil {
		t.Fatal(err)
	}

	o.Stroke("sid-alice", roomID, domain.Stroke{}, core.Frame(`s`))
	if !kicked {
		t.Error("backpressured peer was not canceled")
	}
}
