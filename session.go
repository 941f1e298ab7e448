package main

// fillOrder alternates teams so sequential joiners balance out
var fillOrder = [NumSeats]int{0, 2, 1, 3}

// Join seats a new connection. It returns the seat, or false when the room is
// full; a rejected connection is told so and stays on as a spectator.
func (r *Room) Join(c Conn) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID()] = c

	seat := -1
	for _, s := range fillOrder {
		if r.slots[s] == "" {
			seat = s
			break
		}
	}
	if seat < 0 {
		r.send(c, MsgFull, nil)
		return -1, false
	}
	r.slots[seat] = c.ID()

	lobby := r.lobby()
	r.send(c, MsgAssign, AssignMsg{Slot: seat, LobbyMsg: lobby})
	r.broadcast(MsgLobby, lobby)

	switch r.match.Phase {
	case PhaseWaiting:
		if r.quickplay {
			r.startNewGame()
			r.startLoop()
		}
	case PhasePlaying, PhaseGameOver:
		p := r.match.Players[seat]
		p.Occupied = true
		p.ShootMode = r.shootModes[seat]
		scores := r.match.Scores
		r.send(c, MsgStart, StartMsg{
			LobbyMsg: lobby,
			MidGame:  true,
			Scores:   &scores,
			Phase:    r.match.Phase.String(),
		})
	}
	return seat, true
}

// Leave frees the connection's seat, if any
func (r *Room) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, id)
	seat := r.seatOf(id)
	if seat < 0 {
		return
	}

	r.slots[seat] = ""
	r.names[seat] = ""
	r.shootModes[seat] = ShootAuto
	p := r.match.Players[seat]
	p.Occupied = false
	p.ShootMode = ShootAuto
	delete(r.votes, id)

	r.broadcast(MsgLobby, r.lobby())

	count := r.occupied()
	if r.match.Phase == PhaseGameOver && !r.quickplay && count > 0 {
		r.broadcast(MsgRematch, RematchTallyMsg{Votes: len(r.votes), Total: count})
		if len(r.votes) >= count {
			r.startNewGame()
		}
	}

	if count == 0 {
		r.stopLoop()
		r.match.Phase = PhaseWaiting
		r.votes = make(map[string]bool)
		r.autoRematch = 0
	}
}

// HandleMessage decodes and applies one client message. Anything malformed,
// mistimed or from a connection without the needed seat is dropped.
func (r *Room) HandleMessage(id string, raw []byte) {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; !ok {
		return
	}
	seat := r.seatOf(id)

	switch c := cmd.(type) {
	case InputCmd:
		r.handleInput(seat, c)
	case ModeCmd:
		r.handleMode(seat, c)
	case NameCmd:
		r.handleName(seat, c)
	case StartCmd:
		r.handleStart()
	case RematchCmd:
		r.handleRematch(id, seat)
	case ParamsCmd:
		r.handleParams(c)
	case AnnounceCmd:
		r.handleAnnounce(c)
	}
}

func (r *Room) handleInput(seat int, c InputCmd) {
	if seat < 0 || !r.match.AcceptsInput() {
		return
	}
	p := r.match.Players[seat]
	if c.Angle != nil {
		p.Angle = *c.Angle
	}
	switch c.Action {
	case ActionPress:
		p.Press()
	case ActionRelease:
		p.Release()
	}
}

func (r *Room) handleMode(seat int, c ModeCmd) {
	if seat < 0 {
		return
	}
	r.shootModes[seat] = c.Mode
	r.match.Players[seat].ShootMode = c.Mode
}

func (r *Room) handleName(seat int, c NameCmd) {
	if seat < 0 {
		return
	}
	r.names[seat] = SanitizeName(c.Name)
	r.broadcast(MsgLobby, r.lobby())
}

func (r *Room) handleStart() {
	if r.quickplay || r.match.Phase != PhaseWaiting || r.occupied() < 2 {
		return
	}
	r.startNewGame()
	r.startLoop()
}

func (r *Room) handleRematch(id string, seat int) {
	if r.quickplay || r.match.Phase != PhaseGameOver || seat < 0 {
		return
	}
	r.votes[id] = true
	total := r.occupied()
	r.broadcast(MsgRematch, RematchTallyMsg{Votes: len(r.votes), Total: total})
	if len(r.votes) >= total {
		r.startNewGame()
	}
}

func (r *Room) handleParams(c ParamsCmd) {
	eff := r.params.Apply(c)
	if c.PlayerRadius != nil {
		for _, p := range r.match.Players {
			p.R = eff.PlayerRadius
		}
	}
	if c.BallRadius != nil {
		r.match.Ball.R = eff.BallRadius
	}
	r.broadcast(MsgParams, eff)
}

func (r *Room) handleAnnounce(c AnnounceCmd) {
	if c.Audio == "" || c.Text == "" {
		return
	}
	r.broadcast(MsgAnnounce, c)
}

// seatOf returns the seat held by a connection, or -1
func (r *Room) seatOf(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range r.slots {
		if s == id {
			return i
		}
	}
	return -1
}

func (r *Room) occupied() int {
	n := 0
	for _, s := range r.slots {
		if s != "" {
			n++
		}
	}
	return n
}

func (r *Room) lobby() LobbyMsg {
	var l LobbyMsg
	for i, s := range r.slots {
		if s != "" {
			id := s
			l.Slots[i] = &id
		}
	}
	l.Names = r.names
	return l
}

// ConnCount returns the number of connections, seated or not
func (r *Room) ConnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Info summarizes the room for the room list
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:        r.ID,
		Players:   r.occupied(),
		Phase:     r.match.Phase.String(),
		Quickplay: r.quickplay,
	}
}
