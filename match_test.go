package main

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newPlayingMatch() *Match {
	m := NewMatch(DefaultParams(), testRNG())
	m.Init(DefaultParams(), testEpoch)
	return m
}

// placeBallInGoal parks the ball inside a goal pocket so the next step scores
func placeBallInGoal(m *Match, left bool) {
	m.Ball.X = FieldRight + 15
	if left {
		m.Ball.X = FieldLeft - 15
	}
	m.Ball.Y = FieldCenterY
	m.Ball.VX, m.Ball.VY = 0, 0
}

func stepUntil(t *testing.T, m *Match, now time.Time, done func(StepResult) bool) StepResult {
	t.Helper()
	for i := 0; i < 10*TickRate; i++ {
		res := m.Step(DefaultParams(), now)
		if done(res) {
			return res
		}
	}
	t.Fatal("condition not reached")
	return StepResult{}
}

func TestNewMatchWaiting(t *testing.T) {
	m := NewMatch(DefaultParams(), testRNG())
	if m.Phase != PhaseWaiting {
		t.Errorf("expected waiting, got %s", m.Phase)
	}
	if m.Ball.X != FieldCenterX || m.Ball.Y != FieldCenterY {
		t.Error("ball should start at center")
	}
	res := m.Step(DefaultParams(), testEpoch)
	if len(res.Calls) != 0 || res.GameOver || res.FieldReset {
		t.Error("a waiting match should not step")
	}
}

func TestScoringTeam(t *testing.T) {
	if team, ok := ScoringTeam(FieldLeft-1, FieldCenterY); !ok || team != Team1 {
		t.Error("ball past the left goal line should score for team 1")
	}
	if team, ok := ScoringTeam(FieldRight+1, FieldCenterY); !ok || team != Team0 {
		t.Error("ball past the right goal line should score for team 0")
	}
	if _, ok := ScoringTeam(FieldLeft, FieldCenterY); ok {
		t.Error("ball on the goal line should not score")
	}
	if _, ok := ScoringTeam(FieldLeft-1, GoalTop); ok {
		t.Error("ball level with the post should not score")
	}
}

func TestMatchGoalOpensPause(t *testing.T) {
	m := newPlayingMatch()
	placeBallInGoal(m, true)

	res := m.Step(DefaultParams(), testEpoch.Add(time.Second))

	if m.Scores != [2]int{0, 1} {
		t.Fatalf("scores = %v, want [0 1]", m.Scores)
	}
	if m.Goal == nil || m.Goal.Team != Team1 {
		t.Fatal("goal pause should be open for team 1")
	}
	if m.AcceptsInput() {
		t.Error("input should be frozen during the goal pause")
	}
	var goal *GoalCall
	for _, c := range res.Calls {
		if g, ok := c.(GoalCall); ok {
			goal = &g
		}
	}
	if goal == nil {
		t.Fatal("expected a goal call")
	}
	if goal.Team != Team1 || goal.Scorer.Valid || !goal.QuickGoal || goal.GameOver {
		t.Errorf("unexpected goal call %+v", *goal)
	}

	s := m.Snapshot()
	if s[32] != -1 {
		t.Errorf("no toucher should encode as -1, got %v", s[32])
	}
	if s[34] != 1 || s[35] != 1 || s[36] != GoalPauseSeconds {
		t.Errorf("snapshot goal fields = %v %v %v", s[34], s[35], s[36])
	}
}

func TestMatchGoalPauseResetsField(t *testing.T) {
	m := newPlayingMatch()
	placeBallInGoal(m, false)
	m.Players[0].X += 50
	m.Step(DefaultParams(), testEpoch)

	later := testEpoch.Add(3 * time.Second)
	stepUntil(t, m, later, func(r StepResult) bool { return r.FieldReset })

	if m.Goal != nil {
		t.Error("goal pause should be cleared")
	}
	if m.Ball.X != FieldCenterX || m.Ball.Y != FieldCenterY {
		t.Error("ball should be back at center")
	}
	if m.Players[0].X != m.Players[0].StartX {
		t.Error("players should be back on their spots")
	}
	if m.Scores != [2]int{1, 0} {
		t.Errorf("scores should survive the reset, got %v", m.Scores)
	}
	if !m.KickoffAt.Equal(later) || m.Phase != PhasePlaying {
		t.Error("kickoff should restart play")
	}
}

func TestMatchWinnerEndsGame(t *testing.T) {
	m := newPlayingMatch()
	m.Scores = [2]int{WinScore - 1, 2}
	if !m.MatchPoint(Team0) || m.MatchPoint(Team1) {
		t.Fatal("team 0 should be on match point")
	}
	placeBallInGoal(m, false)
	res := m.Step(DefaultParams(), testEpoch.Add(10*time.Second))

	if m.Winner == nil || *m.Winner != Team0 {
		t.Fatal("team 0 should be the winner")
	}
	for _, c := range res.Calls {
		if g, ok := c.(GoalCall); ok {
			if !g.GameOver || g.MatchPoint || g.QuickGoal {
				t.Errorf("unexpected final goal call %+v", g)
			}
		}
	}

	stepUntil(t, m, testEpoch, func(r StepResult) bool { return r.GameOver })
	if m.Phase != PhaseGameOver {
		t.Errorf("expected gameover, got %s", m.Phase)
	}
	if m.Scores != [2]int{WinScore, 2} {
		t.Errorf("final scores = %v", m.Scores)
	}

	before := m.Snapshot()
	m.Step(DefaultParams(), testEpoch)
	if m.Snapshot() != before {
		t.Error("a finished match should not change")
	}
}

func TestMatchQuickGoalWindow(t *testing.T) {
	m := newPlayingMatch()
	placeBallInGoal(m, true)
	res := m.Step(DefaultParams(), testEpoch.Add(5*time.Second))
	for _, c := range res.Calls {
		if g, ok := c.(GoalCall); ok && g.QuickGoal {
			t.Error("a goal after the window is not quick")
		}
	}
}

func TestMatchLastToucherCredited(t *testing.T) {
	m := newPlayingMatch()
	p := m.Players[2]
	m.Ball.X = p.X - (p.R + m.Ball.R - 2)
	m.Ball.Y = p.Y
	m.Ball.VX = 1

	m.Step(DefaultParams(), testEpoch)
	if m.LastToucher != SeatOf(2) {
		t.Fatalf("last toucher = %+v, want seat 2", m.LastToucher)
	}
	if s := m.Snapshot(); s[32] != 2 {
		t.Errorf("snapshot toucher = %v", s[32])
	}

	placeBallInGoal(m, false)
	m.Step(DefaultParams(), testEpoch)
	if m.PlayerGoals[2] != 1 {
		t.Errorf("seat 2 should be credited, goals = %v", m.PlayerGoals)
	}
}

func TestMatchScoresNeverDecrease(t *testing.T) {
	m := newPlayingMatch()
	prev := m.Scores
	for i := 0; i < 40; i++ {
		placeBallInGoal(m, i%3 == 0)
		stepUntil(t, m, testEpoch, func(r StepResult) bool { return r.FieldReset || r.GameOver })
		if m.Scores[0] < prev[0] || m.Scores[1] < prev[1] {
			t.Fatalf("scores went backwards: %v -> %v", prev, m.Scores)
		}
		prev = m.Scores
		if m.Phase == PhaseGameOver {
			break
		}
	}
	if m.Phase != PhaseGameOver {
		t.Error("repeated goals should end the match")
	}
}

func TestSnapshotLayout(t *testing.T) {
	m := newPlayingMatch()
	m.Players[1].Power = 7
	m.Players[1].Phase = ShotAiming
	s := m.Snapshot()

	p := m.Players[1]
	got := s[7:14]
	want := []float64{p.X, p.Y, p.VX, p.VY, p.Angle, 7, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("player 1 field %d = %v, want %v", i, got[i], want[i])
		}
	}
	if s[28] != FieldCenterX || s[29] != FieldCenterY {
		t.Error("ball position misplaced")
	}
	if s[35] != -1 || s[36] != 0 {
		t.Error("no goal should encode as -1 with zero timer")
	}
}

func countCalls[T Call](calls []Call) int {
	n := 0
	for _, c := range calls {
		if _, ok := c.(T); ok {
			n++
		}
	}
	return n
}

func TestMatchCommentaryAfterLongPlay(t *testing.T) {
	m := newPlayingMatch()
	fired := 0
	for i := 0; i < 26*TickRate; i++ {
		res := m.Step(DefaultParams(), testEpoch.Add(time.Duration(i)*TickDuration))
		if countCalls[CommentaryCall](res.Calls) > 0 {
			fired++
			if m.PlayTime != 0 {
				t.Errorf("play time should reset when commentary fires, got %v", m.PlayTime)
			}
		}
	}
	if fired != 1 {
		t.Fatalf("commentary fired %d times in 26s, want 1", fired)
	}
	if m.PlayTime <= 0 || m.PlayTime >= 2 {
		t.Errorf("play time should restart counting after commentary, got %v", m.PlayTime)
	}
}

func TestMatchPlayTimeResetsOnGoalAndPausesDuringGoalPause(t *testing.T) {
	m := newPlayingMatch()
	for i := 0; i < 10*TickRate; i++ {
		m.Step(DefaultParams(), testEpoch)
	}
	if m.PlayTime < 9.9 {
		t.Fatalf("play time = %v after 10s", m.PlayTime)
	}

	placeBallInGoal(m, true)
	m.Step(DefaultParams(), testEpoch)
	if m.PlayTime != 0 {
		t.Fatalf("goal should reset play time, got %v", m.PlayTime)
	}
	for i := 0; i < TickRate; i++ {
		m.Step(DefaultParams(), testEpoch)
	}
	if m.Goal == nil || m.PlayTime != 0 {
		t.Errorf("play time should not advance during the goal pause, got %v", m.PlayTime)
	}

	stepUntil(t, m, testEpoch, func(r StepResult) bool { return r.FieldReset })
	m.Step(DefaultParams(), testEpoch)
	if m.PlayTime <= 0 {
		t.Error("play time should resume after the kickoff")
	}
}

// setupPostRebound sends the ball into the top post of the left goal mouth
func setupPostRebound(m *Match) {
	m.Ball.X, m.Ball.Y = FieldLeft+14, GoalTop+12
	m.Ball.VX, m.Ball.VY = -4, -4
}

// setupSave sends the ball fast toward seat 0, heading for team 0's goal
func setupSave(m *Match) {
	p := m.Players[0]
	m.Ball.X, m.Ball.Y = p.X+30, p.Y
	m.Ball.VX, m.Ball.VY = -6, 0
}

func TestMatchStepNearMiss(t *testing.T) {
	m := newPlayingMatch()
	setupPostRebound(m)
	res := m.Step(DefaultParams(), testEpoch)
	if countCalls[NearMissCall](res.Calls) != 1 {
		t.Fatalf("expected a near miss, got %#v", res.Calls)
	}
	if m.Ball.VX <= 0 {
		t.Error("ball should rebound off the post")
	}
	if m.Goal != nil {
		t.Error("a post rebound is not a goal")
	}
}

func TestMatchStepSave(t *testing.T) {
	m := newPlayingMatch()
	setupSave(m)
	res := m.Step(DefaultParams(), testEpoch)
	if countCalls[SaveCall](res.Calls) != 1 {
		t.Fatalf("expected a save, got %#v", res.Calls)
	}
	if m.LastToucher != SeatOf(0) {
		t.Errorf("last toucher = %+v", m.LastToucher)
	}

	// The shared gate holds off a second save straight away
	setupSave(m)
	m.LastToucher = SeatRef{}
	res = m.Step(DefaultParams(), testEpoch.Add(time.Second))
	if countCalls[SaveCall](res.Calls) != 0 {
		t.Error("second save inside the gap should be suppressed")
	}
}
