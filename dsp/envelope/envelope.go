package envelope

import "fmt"

const (
	// Overshoot is the attack target. Decay and release aim at 1 - Overshoot.
	Overshoot = 1.15
	// Coeff is -ln(1 - 1/Overshoot): with it the curve reaches 1 at t = T.
	Coeff = 2.03688192726
	// ReleaseTime is the fixed release segment time in seconds.
	ReleaseTime = 6e-3
	// MinTime bounds attack and decay times away from zero.
	MinTime = 1e-6

	idleEpsilon = 0.0

	defaultAttackTime = 0.5
	defaultDecayTime  = 1.0
)

// Stage identifies the active envelope segment.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageRelease:
		return "release"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Generator is a single envelope. The zero value is not ready; use New.
//
// Process must be called exactly once per sample for the configured times to
// hold.
type Generator struct {
	attackTime float64
	decayTime  float64

	value  float64
	target float64
	stage  Stage

	attackTriggered bool
	decayTriggered  bool
}

// New returns an idle generator with a 0.5 s attack and 1 s decay.
func New() *Generator {
	return &Generator{
		attackTime: defaultAttackTime,
		decayTime:  defaultDecayTime,
	}
}

// SetAttackTime sets the attack time in seconds, clamped to >= MinTime.
func (g *Generator) SetAttackTime(seconds float64) {
	g.attackTime = clampTime(seconds)
}

// SetDecayTime sets the decay time in seconds, clamped to >= MinTime.
// It takes effect immediately, including mid-decay.
func (g *Generator) SetDecayTime(seconds float64) {
	g.decayTime = clampTime(seconds)
}

// AttackTime returns the attack time in seconds.
func (g *Generator) AttackTime() float64 { return g.attackTime }

// DecayTime returns the decay time in seconds.
func (g *Generator) DecayTime() float64 { return g.decayTime }

// Value returns the current output.
func (g *Generator) Value() float64 { return g.value }

// Target returns the level the active segment converges to.
func (g *Generator) Target() float64 { return g.target }

// Stage returns the active segment.
func (g *Generator) Stage() Stage { return g.stage }

// IsIdle reports whether the envelope has finished.
func (g *Generator) IsIdle() bool { return g.stage == StageIdle }

// Reset returns to idle at zero and clears the edge flags.
func (g *Generator) Reset() {
	g.stage = StageIdle
	g.target = 0
	g.value = 0
	g.attackTriggered = false
	g.decayTriggered = false
}

// Trigger starts the attack from the current value. It is a no-op while the
// attack is already running.
func (g *Generator) Trigger() {
	if g.stage == StageAttack {
		return
	}

	g.target = Overshoot
	g.stage = StageAttack
	g.attackTriggered = true
}

// Release switches to the fixed-time release segment from any stage.
func (g *Generator) Release() {
	g.target = 1 - Overshoot
	g.stage = StageRelease
}

// Process advances the envelope by deltaTime seconds and returns the value.
func (g *Generator) Process(deltaTime float64) float64 {
	switch g.stage {
	case StageIdle:
		return 0
	case StageAttack:
		g.value += Coeff * deltaTime * (g.target - g.value) / g.attackTime
		if g.value > 1 {
			g.value = 1
			g.target = 1 - Overshoot
			g.stage = StageDecay
			g.decayTriggered = true
		}
	case StageDecay, StageRelease:
		segment := g.decayTime
		if g.stage == StageRelease {
			segment = ReleaseTime
		}

		g.value += Coeff * deltaTime * (g.target - g.value) / segment
		if g.value < idleEpsilon {
			g.value = 0
			g.stage = StageIdle
		}
	}

	return g.value
}

// AttackWasTriggered reports whether an attack started since the last call.
func (g *Generator) AttackWasTriggered() bool {
	v := g.attackTriggered
	g.attackTriggered = false
	return v
}

// DecayWasTriggered reports whether a decay started since the last call.
func (g *Generator) DecayWasTriggered() bool {
	v := g.decayTriggered
	g.decayTriggered = false
	return v
}

func clampTime(seconds float64) float64 {
	if !(seconds >= MinTime) {
		return MinTime
	}

	return seconds
}
