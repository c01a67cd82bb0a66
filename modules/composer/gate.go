package composer

// resolveGate decides the gate level of step from the flags of the step and
// its neighbours. clock is the raw clock level.
//
// A plain gate follows the clock. A gate followed by a tie or slide holds
// high, as do the inner steps of a run of ties or slides. The first tie after
// a gate holds only if more ties or slides follow; otherwise it releases with
// the clock.
func resolveGate(p *Pattern, step int, clock bool) bool {
	cur := p.At(step)
	prev := p.At(step - 1)
	next := p.At(step + 1)

	isGate, isTie, isSlide := cur.Gate(), cur.Tie(), cur.Slide()
	nextIsTie, nextIsSlide := next.Tie(), next.Slide()

	gate := false

	if (isGate && (!nextIsTie || !nextIsSlide)) || (isTie && prev.Tie() && !nextIsTie) {
		gate = clock
	}

	if (isGate && (nextIsTie || nextIsSlide)) ||
		(isTie && prev.Tie() && nextIsTie) ||
		(isSlide && prev.Slide() && nextIsSlide) {
		gate = true
	}

	if isTie && prev.Gate() {
		gate = clock || nextIsTie || nextIsSlide
	}

	return gate
}
