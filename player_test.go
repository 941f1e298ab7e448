package main

import (
	"math"
	"math/rand/v2"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func newTestPlayer(seat int) *Player {
	p := NewPlayer(seat, DefaultParams().PlayerRadius, testRNG())
	p.Occupied = true
	return p
}

func TestTeamOfAndStartPositions(t *testing.T) {
	for seat, want := range []Team{Team0, Team0, Team1, Team1} {
		if got := TeamOf(seat); got != want {
			t.Errorf("TeamOf(%d) = %d, want %d", seat, got, want)
		}
	}
	x0, y0 := StartPosition(0)
	x1, y1 := StartPosition(1)
	x2, _ := StartPosition(2)
	if x0 != x1 || y0 >= y1 {
		t.Error("seats 0 and 1 should share a side, 0 on top")
	}
	if x0 >= FieldCenterX || x2 <= FieldCenterX {
		t.Error("team 0 should start left, team 1 right")
	}
}

func TestNewPlayerAtStart(t *testing.T) {
	p := NewPlayer(2, 18, testRNG())
	if p.X != p.StartX || p.Y != p.StartY {
		t.Error("player should start on its spot")
	}
	if p.Team != Team1 || p.Mass != PlayerMass || p.R != 18 {
		t.Errorf("unexpected player: team=%d mass=%v r=%v", p.Team, p.Mass, p.R)
	}
	if p.Angle < 0 || p.Angle >= 2*math.Pi {
		t.Errorf("angle %v outside [0, 2pi)", p.Angle)
	}
	if p.Phase != ShotRotating || p.Power != 0 {
		t.Error("player should start rotating with no power")
	}
}

func TestPlayerPressReleaseCycle(t *testing.T) {
	params := DefaultParams()
	p := newTestPlayer(0)
	p.Angle = 0

	p.Press()
	if p.Phase != ShotAiming || p.Power != 0 {
		t.Fatal("press should start aiming from zero power")
	}
	for i := 0; i < 30; i++ {
		p.Update(TickDT, params)
	}
	want := 30 * TickDT * params.PowerRate
	if math.Abs(p.Power-want) > 1e-9 {
		t.Errorf("power = %v, want %v", p.Power, want)
	}
	if p.Angle != 0 {
		t.Error("aiming should not rotate")
	}

	power := p.Power
	if !p.Release() {
		t.Fatal("release while aiming should fire")
	}
	if math.Abs(p.VX-power) > 1e-9 || math.Abs(p.VY) > 1e-9 {
		t.Errorf("shot velocity = (%v, %v), want (%v, 0)", p.VX, p.VY, power)
	}
	if p.Phase != ShotRotating || p.Power != 0 {
		t.Error("release should return to rotating with no power")
	}
}

func TestPlayerPressIdempotent(t *testing.T) {
	params := DefaultParams()
	p := newTestPlayer(0)
	p.Press()
	p.Update(TickDT, params)
	charged := p.Power

	p.Press()
	if p.Power != charged || p.Phase != ShotAiming {
		t.Error("press while aiming should keep the charge")
	}
}

func TestPlayerReleaseWhileRotating(t *testing.T) {
	p := newTestPlayer(0)
	if p.Release() {
		t.Error("release while rotating should be a no-op")
	}
	if p.VX != 0 || p.VY != 0 {
		t.Error("no-op release must not move the player")
	}
}

func TestPlayerPowerCapped(t *testing.T) {
	params := DefaultParams()
	p := newTestPlayer(1)
	p.Press()
	for i := 0; i < 10*TickRate; i++ {
		p.Update(TickDT, params)
	}
	if p.Power != params.MaxPower {
		t.Errorf("power = %v, want cap %v", p.Power, params.MaxPower)
	}
}

func TestPlayerZeroPowerTapStillMoves(t *testing.T) {
	p := newTestPlayer(0)
	p.Angle = math.Pi / 2
	p.Press()
	p.Release()
	if math.Abs(p.VY-1) > 1e-9 || math.Abs(p.VX) > 1e-9 {
		t.Errorf("zero-power tap velocity = (%v, %v), want (0, 1)", p.VX, p.VY)
	}
}

func TestPlayerRotation(t *testing.T) {
	params := DefaultParams()

	p := newTestPlayer(0)
	p.Angle = 1
	p.Update(TickDT, params)
	if math.Abs(p.Angle-(1+params.RotSpeed*TickDT)) > 1e-12 {
		t.Errorf("occupied auto player should rotate, angle %v", p.Angle)
	}

	p = newTestPlayer(0)
	p.Occupied = false
	p.Angle = 1
	p.Update(TickDT, params)
	if p.Angle != 1 {
		t.Error("unoccupied player should not rotate")
	}

	p = newTestPlayer(0)
	p.ShootMode = ShootManual
	p.Angle = 1
	p.Update(TickDT, params)
	if p.Angle != 1 {
		t.Error("manual mode should not auto-rotate")
	}
}

func TestUnoccupiedPlayerIgnoresCharge(t *testing.T) {
	params := DefaultParams()
	p := newTestPlayer(0)
	p.Press()
	p.Occupied = false
	p.Update(TickDT, params)
	if p.Power != 0 {
		t.Error("unoccupied seat should not charge")
	}
}

func TestBodyFrictionAndRest(t *testing.T) {
	b := &Body{VX: 5, VY: -3, R: 10, Mass: 1}
	prev := b.Speed()
	for i := 0; i < 1000; i++ {
		b.Integrate(0.982)
		s := b.Speed()
		if s > prev {
			t.Fatalf("speed increased at step %d: %v > %v", i, s, prev)
		}
		prev = s
	}
	if b.VX != 0 || b.VY != 0 {
		t.Errorf("body should come to rest, v=(%v, %v)", b.VX, b.VY)
	}
}

func TestBodySnapsOnlyWhenBothComponentsSlow(t *testing.T) {
	b := &Body{VX: 0.1, VY: 2}
	b.Integrate(1)
	if b.VX == 0 {
		t.Error("a slow component alone should not snap")
	}
	b = &Body{VX: 0.1, VY: -0.1}
	b.Integrate(1)
	if b.VX != 0 || b.VY != 0 {
		t.Error("both components below the threshold should snap to zero")
	}
}
