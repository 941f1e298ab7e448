package main

import (
	"math/rand/v2"
	"time"
)

// MatchPhase represents the lifecycle of a match
type MatchPhase int

const (
	PhaseWaiting  MatchPhase = 0
	PhasePlaying  MatchPhase = 1
	PhaseGameOver MatchPhase = 2
)

func (p MatchPhase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "gameover"
	default:
		return "waiting"
	}
}

const (
	TickRate         = 60
	TickDT           = 1.0 / TickRate
	GoalPauseSeconds = 2.0
)

// GoalPause is the frozen window after a goal
type GoalPause struct {
	Team      Team
	Remaining float64 // seconds
}

// StepResult tells the room what happened during one tick
type StepResult struct {
	Calls      []Call
	FieldReset bool // goal pause ended without a winner
	GameOver   bool // goal pause ended with a winner
}

// Match holds the authoritative state of one game
type Match struct {
	Phase       MatchPhase
	Players     [NumSeats]*Player
	Ball        *Ball
	LastToucher SeatRef
	Scores      [2]int
	Goal        *GoalPause // nil unless a goal pause is counting down
	Winner      *Team      // only set while Goal is non-nil or after GameOver
	PlayerGoals [NumSeats]int
	KickoffAt   time.Time
	StartedAt   time.Time
	PlayTime    float64 // simulated seconds since the last goal or commentary

	announcer Announcer
	rng       *rand.Rand
}

// NewMatch creates a match in the waiting phase with players on their start spots
func NewMatch(params Params, rng *rand.Rand) *Match {
	m := &Match{rng: rng}
	m.Init(params, time.Time{})
	m.Phase = PhaseWaiting
	return m
}

// Init resets every entity, score and timer and starts play. Occupancy and
// shoot modes are re-applied by the caller.
func (m *Match) Init(params Params, now time.Time) {
	for i := range m.Players {
		m.Players[i] = NewPlayer(i, params.PlayerRadius, m.rng)
	}
	m.Ball = NewBall(params.BallRadius)
	m.LastToucher = SeatRef{}
	m.Scores = [2]int{}
	m.Goal = nil
	m.Winner = nil
	m.PlayerGoals = [NumSeats]int{}
	m.KickoffAt = now
	m.StartedAt = now
	m.PlayTime = 0
	m.Phase = PhasePlaying
}

// ResetField puts players and ball back for a kickoff, keeping scores
func (m *Match) ResetField(params Params, now time.Time) {
	for _, p := range m.Players {
		p.Reset(m.rng)
	}
	m.Ball = NewBall(params.BallRadius)
	m.LastToucher = SeatRef{}
	m.Goal = nil
	m.KickoffAt = now
	m.PlayTime = 0
}

// AcceptsInput reports whether shot input may change player state
func (m *Match) AcceptsInput() bool {
	return m.Phase == PhasePlaying && m.Goal == nil && m.Winner == nil
}

// MatchPoint reports whether team is one goal from winning
func (m *Match) MatchPoint(team Team) bool {
	return m.Scores[team] == WinScore-1 && m.Winner == nil
}

// Step advances the match by one fixed tick
func (m *Match) Step(params Params, now time.Time) StepResult {
	var res StepResult
	if m.Phase != PhasePlaying {
		return res
	}

	if m.Goal != nil {
		m.Goal.Remaining -= TickDT
		if m.Goal.Remaining <= 0 {
			if m.Winner != nil {
				m.Phase = PhaseGameOver
				res.GameOver = true
				return res
			}
			m.ResetField(params, now)
			res.FieldReset = true
		}
		return res
	}

	c := m.simulate(params)

	if call, ok := m.announcer.checkSave(now, c, m.LastToucher); ok {
		res.Calls = append(res.Calls, call)
	}
	if call, ok := m.announcer.checkNearMiss(now, c, m.Ball); ok {
		res.Calls = append(res.Calls, call)
	}
	m.PlayTime += TickDT
	if call, ok := m.announcer.checkCommentary(now, m.PlayTime); ok {
		m.PlayTime = 0
		res.Calls = append(res.Calls, call)
	}

	if team, ok := ScoringTeam(m.Ball.X, m.Ball.Y); ok {
		res.Calls = append(res.Calls, m.score(team, now))
	}
	return res
}

// simulate runs the physics pipeline in its fixed order
func (m *Match) simulate(params Params) contact {
	rest := params.Restitution
	b := &m.Ball.Body
	c := contact{
		prevToucher: m.LastToucher,
		prevBallVX:  b.VX,
		prevBallVY:  b.VY,
	}

	for _, p := range m.Players {
		p.Update(TickDT, params)
	}
	b.Integrate(params.Friction)

	for _, p := range m.Players {
		WallBounce(&p.Body, rest)
	}
	WallBounce(b, rest)

	for _, p := range m.Players {
		CollidePosts(&p.Body, rest)
	}
	c.postBallVX, c.postBallVY = b.VX, b.VY
	c.postHit = CollidePosts(b, rest)

	for i := 0; i < NumSeats; i++ {
		for j := i + 1; j < NumSeats; j++ {
			Collide(&m.Players[i].Body, &m.Players[j].Body, rest)
		}
	}
	for i, p := range m.Players {
		if Collide(&p.Body, b, rest) {
			m.LastToucher = SeatOf(i)
		}
	}
	return c
}

// score credits a goal and opens the goal pause
func (m *Match) score(team Team, now time.Time) GoalCall {
	m.Scores[team]++
	m.Goal = &GoalPause{Team: team, Remaining: GoalPauseSeconds}
	if m.LastToucher.Valid {
		m.PlayerGoals[m.LastToucher.Seat]++
	}
	if m.Scores[team] >= WinScore {
		w := team
		m.Winner = &w
	}
	call := GoalCall{
		Scorer:     m.LastToucher,
		Team:       team,
		QuickGoal:  now.Sub(m.KickoffAt) < quickGoalWindow,
		MatchPoint: m.MatchPoint(team),
		GameOver:   m.Winner != nil,
	}
	m.PlayTime = 0
	m.announcer.Mark(now)
	return call
}

// Snapshot packs the fixed-layout numeric state frame
func (m *Match) Snapshot() Snapshot {
	var s Snapshot
	for i, p := range m.Players {
		o := i * 7
		s[o] = p.X
		s[o+1] = p.Y
		s[o+2] = p.VX
		s[o+3] = p.VY
		s[o+4] = p.Angle
		s[o+5] = p.Power
		s[o+6] = float64(p.Phase)
	}
	s[28] = m.Ball.X
	s[29] = m.Ball.Y
	s[30] = m.Ball.VX
	s[31] = m.Ball.VY
	s[32] = -1
	if m.LastToucher.Valid {
		s[32] = float64(m.LastToucher.Seat)
	}
	s[33] = float64(m.Scores[0])
	s[34] = float64(m.Scores[1])
	s[35] = -1
	if m.Goal != nil {
		s[35] = float64(m.Goal.Team)
		s[36] = m.Goal.Remaining
	}
	return s
}
