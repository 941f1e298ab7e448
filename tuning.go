package main

// Fixed physical constants. Everything live-tunable lives in Params.
const (
	PlayerMass  = 3.0
	BallMass    = 1.0
	MinVelocity = 0.15 // both components below this snap to zero
	WinScore    = 5
)

// Params is the per-room tuning record read by the physics and shot code.
// Mutation goes through Apply, which clamps every field to its safe range.
type Params struct {
	MaxPower     float64 `json:"maxPower"`
	PowerRate    float64 `json:"powerRate"`
	Friction     float64 `json:"friction"`
	RotSpeed     float64 `json:"rotSpeed"`
	Restitution  float64 `json:"restitution"`
	PlayerRadius float64 `json:"playerRadius"`
	BallRadius   float64 `json:"ballRadius"`
}

// DefaultParams returns the tuning a fresh room starts with.
func DefaultParams() Params {
	return Params{
		MaxPower:     16,
		PowerRate:    20,
		Friction:     0.982,
		RotSpeed:     2.8,
		Restitution:  0.78,
		PlayerRadius: 18,
		BallRadius:   12,
	}
}

type paramRange struct{ min, max float64 }

var (
	maxPowerRange     = paramRange{4, 40}
	powerRateRange    = paramRange{5, 60}
	frictionRange     = paramRange{0.95, 0.999}
	rotSpeedRange     = paramRange{0.5, 8}
	restitutionRange  = paramRange{0.3, 1.2}
	playerRadiusRange = paramRange{8, 36}
	ballRadiusRange   = paramRange{6, 24}
)

func (r paramRange) apply(dst *float64, v *float64) {
	if v == nil {
		return
	}
	*dst = Clamp(*v, r.min, r.max)
}

// Apply merges the fields present in u into p, clamped, and returns the
// effective record.
func (p *Params) Apply(u ParamsCmd) Params {
	maxPowerRange.apply(&p.MaxPower, u.MaxPower)
	powerRateRange.apply(&p.PowerRate, u.PowerRate)
	frictionRange.apply(&p.Friction, u.Friction)
	rotSpeedRange.apply(&p.RotSpeed, u.RotSpeed)
	restitutionRange.apply(&p.Restitution, u.Restitution)
	playerRadiusRange.apply(&p.PlayerRadius, u.PlayerRadius)
	ballRadiusRange.apply(&p.BallRadius, u.BallRadius)
	return *p
}
