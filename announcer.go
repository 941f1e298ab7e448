package main

import (
	"math"
	"time"
)

const (
	reactiveGap       = 10 * time.Second
	commentaryGap     = 20 * time.Second
	commentaryAfter   = 25.0 // simulated seconds of play without a goal
	quickGoalWindow   = 4 * time.Second
	saveMinSpeed      = 4.0
	saveMinApproach   = 2.0
	nearMissMinSpeed  = 3.0
	nearMissMouthZone = 15.0
)

// Call is a derived event for the announcer. The concrete types below are the
// complete set; Room.announce turns each into an outbound event.
type Call interface {
	call()
}

// SaveCall: a player intercepted a ball heading for their own goal
type SaveCall struct {
	Seat int
	Team Team
}

// NearMissCall: the ball rang off a post at the goal mouth
type NearMissCall struct{}

// CommentaryCall: periodic color commentary during a long spell of play
type CommentaryCall struct{}

// GoalCall is emitted on every goal and is never rate limited
type GoalCall struct {
	Scorer     SeatRef
	Team       Team
	QuickGoal  bool
	MatchPoint bool
	GameOver   bool
}

func (SaveCall) call()       {}
func (NearMissCall) call()   {}
func (CommentaryCall) call() {}
func (GoalCall) call()       {}

// Announcer rate-limits calls. All categories share one gate, so firing any
// of them delays the others.
type Announcer struct {
	last time.Time
}

// allow opens the gate if gap has elapsed since the last call and marks it used
func (a *Announcer) allow(now time.Time, gap time.Duration) bool {
	if !a.last.IsZero() && now.Sub(a.last) < gap {
		return false
	}
	a.last = now
	return true
}

// Mark records an ungated call (goals) against the shared gate
func (a *Announcer) Mark(now time.Time) {
	a.last = now
}

// contact is what the physics pass observed during one tick
type contact struct {
	prevToucher SeatRef
	prevBallVX  float64 // before integration
	prevBallVY  float64
	postHit     bool
	postBallVX  float64 // just before the post pass
	postBallVY  float64
}

// checkSave fires when the last toucher changed to a player whose own goal the
// ball was heading for at speed.
func (a *Announcer) checkSave(now time.Time, c contact, toucher SeatRef) (Call, bool) {
	if !toucher.Valid || toucher == c.prevToucher {
		return nil, false
	}
	team := TeamOf(toucher.Seat)
	toOwnGoal := (team == Team0 && c.prevBallVX < -saveMinApproach) ||
		(team == Team1 && c.prevBallVX > saveMinApproach)
	speed := math.Hypot(c.prevBallVX, c.prevBallVY)
	if !toOwnGoal || speed <= saveMinSpeed || !a.allow(now, reactiveGap) {
		return nil, false
	}
	return SaveCall{Seat: toucher.Seat, Team: team}, true
}

// checkNearMiss fires when a fast ball bounced off a post inside the goal band
func (a *Announcer) checkNearMiss(now time.Time, c contact, ball *Ball) (Call, bool) {
	if !c.postHit || ball.Y <= GoalTop || ball.Y >= GoalBottom {
		return nil, false
	}
	if !NearGoalMouth(ball.X, nearMissMouthZone) {
		return nil, false
	}
	if math.Hypot(c.postBallVX, c.postBallVY) <= nearMissMinSpeed || !a.allow(now, reactiveGap) {
		return nil, false
	}
	return NearMissCall{}, true
}

// checkCommentary fires once playTime reaches the commentary threshold and the gate is open
func (a *Announcer) checkCommentary(now time.Time, playTime float64) (Call, bool) {
	if playTime < commentaryAfter || !a.allow(now, commentaryGap) {
		return nil, false
	}
	return CommentaryCall{}, true
}
