package main

import (
	"encoding/json"
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	TickDuration     = time.Second / TickRate
	snapshotEvery    = 3  // ticks per state frame (20Hz)
	countdownEvery   = 30 // ticks per countdown message
	autoRematchDelay = 3.0
)

// QuickplayRoomID is the auto-start room: play begins on the first join and
// restarts by itself after game over.
const QuickplayRoomID = "quickplay"

// Conn is the room's view of one transport connection. Sends must not block.
type Conn interface {
	ID() string
	SendRaw(data []byte)
	SendBinary(data []byte)
}

// Room holds the state for one match instance. Every exported method and the
// tick loop take mu, so message handling and ticks never interleave.
type Room struct {
	mu        sync.Mutex
	ID        string
	quickplay bool
	params    Params
	match     *Match
	conns     map[string]Conn

	slots      [NumSeats]string // connection id, "" when free
	names      [NumSeats]string
	votes      map[string]bool
	shootModes [NumSeats]ShootMode

	syncCounter int
	autoRematch float64 // seconds until a quickplay rematch

	tickEvery time.Duration
	loopStop  chan struct{}
	now       func() time.Time
	analytics *Analytics
}

// NewRoom creates an empty room in the waiting phase
func NewRoom(id string, analytics *Analytics) *Room {
	params := DefaultParams()
	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Room{
		ID:        id,
		quickplay: id == QuickplayRoomID,
		params:    params,
		match:     NewMatch(params, rng),
		conns:     make(map[string]Conn),
		votes:     make(map[string]bool),
		tickEvery: TickDuration,
		now:       time.Now,
		analytics: analytics,
	}
}

// startLoop starts the tick goroutine unless it is already running. Caller holds mu.
func (r *Room) startLoop() {
	if r.loopStop != nil {
		return
	}
	stop := make(chan struct{})
	r.loopStop = stop
	go r.run(stop, r.tickEvery)
	log.Printf("room %s: loop started", r.ID)
}

// stopLoop stops the tick goroutine if running. Caller holds mu.
func (r *Room) stopLoop() {
	if r.loopStop == nil {
		return
	}
	close(r.loopStop)
	r.loopStop = nil
	log.Printf("room %s: loop stopped", r.ID)
}

func (r *Room) run(stop chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			if r.loopStop != stop {
				r.mu.Unlock()
				return
			}
			r.tick()
			r.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// tick runs one fixed step. Caller holds mu.
func (r *Room) tick() {
	m := r.match
	switch m.Phase {
	case PhaseGameOver:
		if r.quickplay {
			r.tickAutoRematch()
		}
		return
	case PhaseWaiting:
		return
	}

	res := m.Step(r.params, r.now())
	for _, c := range res.Calls {
		r.announce(c)
	}
	if res.GameOver {
		r.finishMatch()
		return
	}

	r.syncCounter++
	if r.syncCounter >= snapshotEvery {
		r.syncCounter = 0
		r.broadcastState()
	}
}

func (r *Room) tickAutoRematch() {
	r.autoRematch -= TickDT
	r.syncCounter++
	if r.syncCounter%countdownEvery == 0 {
		secs := int(math.Ceil(math.Max(r.autoRematch, 0)))
		r.broadcast(MsgCountdown, CountdownMsg{Secs: secs})
	}
	if r.autoRematch <= 0 {
		r.autoRematch = 0
		r.startNewGame()
	}
}

// startNewGame reinitializes the match, keeping seats and shoot modes
func (r *Room) startNewGame() {
	r.match.Init(r.params, r.now())
	for i, p := range r.match.Players {
		p.Occupied = r.slots[i] != ""
		p.ShootMode = r.shootModes[i]
	}
	r.votes = make(map[string]bool)
	r.syncCounter = 0

	lobby := r.lobby()
	r.broadcast(MsgStart, StartMsg{LobbyMsg: lobby})
	r.broadcast(MsgEvent, GameStartEvent{Event: EventGameStart, Names: lobby.Names, Slots: lobby.Slots})
	r.track(EvtMatchStart, -1, map[string]any{"players": r.occupied()})
	log.Printf("room %s: match started with %d players", r.ID, r.occupied())
}

// finishMatch sends the final frame and game-over bundle
func (r *Room) finishMatch() {
	m := r.match
	r.broadcastState()

	scorer := ""
	if m.LastToucher.Valid {
		scorer = r.names[m.LastToucher.Seat]
	}
	r.broadcast(MsgGameOver, GameOverMsg{
		Winner: WinnerInfo{Team: *m.Winner, Scorer: scorer},
		Scores: m.Scores,
	})
	r.broadcast(MsgEvent, GameOverEvent{
		Event:       EventGameOver,
		WinnerTeam:  *m.Winner,
		Scores:      m.Scores,
		Names:       r.names,
		PlayerGoals: m.PlayerGoals,
	})
	if r.quickplay {
		r.autoRematch = autoRematchDelay
		r.syncCounter = 0
	}

	duration := r.now().Sub(m.StartedAt).Seconds()
	r.track(EvtMatchEnd, -1, map[string]any{
		"winner":   *m.Winner,
		"scores":   m.Scores,
		"goals":    m.Scores[0] + m.Scores[1],
		"duration": duration,
	})
	log.Printf("room %s: game over, team %d wins %d-%d", r.ID, *m.Winner, m.Scores[0], m.Scores[1])
}

// announce turns an announcer call into its outbound event
func (r *Room) announce(call Call) {
	m := r.match
	switch c := call.(type) {
	case SaveCall:
		r.broadcast(MsgEvent, SaveEvent{
			Event:     EventSave,
			Saver:     r.names[c.Seat],
			SaverTeam: c.Team,
			Scores:    m.Scores,
		})
	case NearMissCall:
		r.broadcast(MsgEvent, NearMissEvent{Event: EventNearMiss, Scores: m.Scores})
	case CommentaryCall:
		r.broadcast(MsgEvent, CommentaryEvent{
			Event:       EventCommentary,
			Scores:      m.Scores,
			Names:       r.names,
			PlayerGoals: m.PlayerGoals,
		})
	case GoalCall:
		scorer, seat := "", -1
		if c.Scorer.Valid {
			seat = c.Scorer.Seat
			scorer = r.names[seat]
		}
		r.broadcast(MsgEvent, GoalEvent{
			Event:        EventGoal,
			Scorer:       scorer,
			ScorerTeam:   c.Team,
			Scores:       m.Scores,
			QuickGoal:    c.QuickGoal,
			IsMatchPoint: c.MatchPoint,
			IsGameOver:   c.GameOver,
		})
		r.track(EvtGoal, seat, map[string]any{"team": c.Team, "scores": m.Scores, "quick": c.QuickGoal})
	default:
		log.Printf("room %s: unhandled announcer call %T", r.ID, call)
	}
}

// broadcastState sends the current snapshot to all connections
func (r *Room) broadcastState() {
	data, err := EncodeSnapshot(r.match.Snapshot())
	if err != nil {
		log.Printf("room %s: encode state: %v", r.ID, err)
		return
	}
	for _, c := range r.conns {
		c.SendBinary(data)
	}
}

// broadcast sends an envelope to every connection in the room
func (r *Room) broadcast(t string, data interface{}) {
	raw, err := json.Marshal(Envelope{T: t, Data: data})
	if err != nil {
		log.Printf("room %s: marshal %s: %v", r.ID, t, err)
		return
	}
	for _, c := range r.conns {
		c.SendRaw(raw)
	}
}

// send delivers an envelope to one connection
func (r *Room) send(c Conn, t string, data interface{}) {
	raw, err := json.Marshal(Envelope{T: t, Data: data})
	if err != nil {
		log.Printf("room %s: marshal %s: %v", r.ID, t, err)
		return
	}
	c.SendRaw(raw)
}

func (r *Room) track(evtType string, seat int, detail map[string]any) {
	if r.analytics == nil {
		return
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return
	}
	r.analytics.Track(evtType, r.ID, seat, string(data))
}
