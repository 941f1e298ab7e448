package main

import (
	"math"
	"math/rand/v2"
)

const NumSeats = 4

// Team is 0 (left goal defenders) or 1 (right goal defenders).
type Team int

const (
	Team0 Team = 0
	Team1 Team = 1
)

// TeamOf returns the team a seat plays for: seats 0,1 are team 0, seats 2,3 team 1.
func TeamOf(seat int) Team {
	if seat >= 2 {
		return Team1
	}
	return Team0
}

// SeatRef is an optional seat index. The zero value refers to no seat.
type SeatRef struct {
	Seat  int
	Valid bool
}

// SeatOf returns a reference to seat i.
func SeatOf(i int) SeatRef {
	return SeatRef{Seat: i, Valid: true}
}

// ShotPhase is the state of a player's shot machine
type ShotPhase int

const (
	ShotRotating ShotPhase = 0
	ShotAiming   ShotPhase = 1
)

// ShootMode selects the shot rule. ShootManual disables auto-rotation.
type ShootMode int

const (
	ShootAuto   ShootMode = 0
	ShootManual ShootMode = 1
)

// Body is a circle integrated once per tick. Velocities are in units per tick.
type Body struct {
	X, Y   float64
	VX, VY float64
	R      float64
	Mass   float64
}

// Integrate moves the body by its velocity, applies friction and snaps
// near-zero velocity to rest.
func (b *Body) Integrate(friction float64) {
	b.X += b.VX
	b.Y += b.VY
	b.VX *= friction
	b.VY *= friction
	if math.Abs(b.VX) < MinVelocity && math.Abs(b.VY) < MinVelocity {
		b.VX = 0
		b.VY = 0
	}
}

// Speed returns the magnitude of the body's velocity
func (b *Body) Speed() float64 {
	return math.Sqrt(b.VX*b.VX + b.VY*b.VY)
}

// Player is one of the four seat-bound discs
type Player struct {
	Body
	Seat      int
	Team      Team
	StartX    float64
	StartY    float64
	Angle     float64 // facing, radians
	Power     float64
	Phase     ShotPhase
	Occupied  bool
	ShootMode ShootMode
}

// NewPlayer creates the player for a seat at its start position
func NewPlayer(seat int, radius float64, rng *rand.Rand) *Player {
	sx, sy := StartPosition(seat)
	p := &Player{
		Body:   Body{R: radius, Mass: PlayerMass},
		Seat:   seat,
		Team:   TeamOf(seat),
		StartX: sx,
		StartY: sy,
	}
	p.Reset(rng)
	return p
}

// Reset puts the player back on its start spot with a random facing
func (p *Player) Reset(rng *rand.Rand) {
	p.X = p.StartX
	p.Y = p.StartY
	p.VX = 0
	p.VY = 0
	p.Angle = rng.Float64() * 2 * math.Pi
	p.Power = 0
	p.Phase = ShotRotating
}

// Update advances the shot machine and integrates the body for one tick
func (p *Player) Update(dt float64, params Params) {
	if p.Occupied {
		if p.ShootMode == ShootAuto && p.Phase == ShotRotating {
			p.Angle += params.RotSpeed * dt
		}
		if p.Phase == ShotAiming {
			p.Power = math.Min(p.Power+params.PowerRate*dt, params.MaxPower)
		}
	}
	p.Integrate(params.Friction)
}

// Press starts aiming. Pressing while already aiming keeps the charged power.
func (p *Player) Press() {
	if p.Phase == ShotAiming {
		return
	}
	p.Phase = ShotAiming
	p.Power = 0
}

// Release fires if aiming and reports whether a shot happened
func (p *Player) Release() bool {
	if p.Phase != ShotAiming {
		return false
	}
	p.Shoot()
	return true
}

// Shoot adds an impulse along the facing angle. A zero-power tap still moves
// the player with power 1.
func (p *Player) Shoot() {
	pow := math.Max(p.Power, 1)
	p.VX += math.Cos(p.Angle) * pow
	p.VY += math.Sin(p.Angle) * pow
	p.Phase = ShotRotating
	p.Power = 0
}

// Ball is the single match ball
type Ball struct {
	Body
}

// NewBall places a resting ball at the field center
func NewBall(radius float64) *Ball {
	return &Ball{Body: Body{X: FieldCenterX, Y: FieldCenterY, R: radius, Mass: BallMass}}
}
