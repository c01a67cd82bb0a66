package wdf

// Element is an adapted one-port wave digital element.
type Element interface {
	// PortResistance returns the port resistance in ohms.
	PortResistance() float64
	// Reflected computes and returns the reflected wave b.
	Reflected() float64
	// Incident accepts the incident wave a.
	Incident(a float64)
	// Waves returns the most recent incident and reflected waves.
	Waves() (a, b float64)
}

// Voltage returns the voltage across e.
func Voltage(e Element) float64 {
	a, b := e.Waves()
	return (a + b) / 2
}

// Current returns the current through e.
func Current(e Element) float64 {
	a, b := e.Waves()
	return (a - b) / (2 * e.PortResistance())
}

// Resistor is a reflection-free resistor: with the port resistance matched to
// the resistance, b is always 0.
type Resistor struct {
	r        float64
	a, b     float64
	onChange func()
}

// NewResistor returns a resistor of r ohms.
func NewResistor(r float64) *Resistor {
	return &Resistor{r: r}
}

// SetResistance updates the resistance and notifies the parent adaptor.
func (e *Resistor) SetResistance(r float64) {
	if r == e.r {
		return
	}

	e.r = r
	if e.onChange != nil {
		e.onChange()
	}
}

// PortResistance implements Element.
func (e *Resistor) PortResistance() float64 { return e.r }

// Reflected implements Element.
func (e *Resistor) Reflected() float64 {
	e.b = 0
	return e.b
}

// Incident implements Element.
func (e *Resistor) Incident(a float64) { e.a = a }

// Waves implements Element.
func (e *Resistor) Waves() (a, b float64) { return e.a, e.b }

func (e *Resistor) setParent(fn func()) { e.onChange = fn }

// Capacitor is a bilinear-discretized capacitor with port resistance
// T / (2C). Its one-sample state is the last incident wave.
type Capacitor struct {
	c          float64
	sampleRate float64
	r          float64
	z          float64
	a, b       float64
	onChange   func()
}

// NewCapacitor returns a capacitor of c farads. Prepare must be called before
// processing.
func NewCapacitor(c float64) *Capacitor {
	return &Capacitor{c: c, sampleRate: 48000, r: 1 / (2 * c * 48000)}
}

// Prepare sets the sample rate and recomputes the port resistance.
func (e *Capacitor) Prepare(sampleRate float64) {
	e.sampleRate = sampleRate
	e.update()
	e.Reset()
}

// SetCapacitance updates the capacitance and notifies the parent adaptor.
func (e *Capacitor) SetCapacitance(c float64) {
	if c == e.c {
		return
	}

	e.c = c
	e.update()
}

// Reset clears the stored charge.
func (e *Capacitor) Reset() {
	e.z = 0
	e.a = 0
	e.b = 0
}

func (e *Capacitor) update() {
	e.r = 1 / (2 * e.c * e.sampleRate)
	if e.onChange != nil {
		e.onChange()
	}
}

// PortResistance implements Element.
func (e *Capacitor) PortResistance() float64 { return e.r }

// Reflected implements Element.
func (e *Capacitor) Reflected() float64 {
	e.b = e.z
	return e.b
}

// Incident implements Element.
func (e *Capacitor) Incident(a float64) {
	e.a = a
	e.z = a
}

// Waves implements Element.
func (e *Capacitor) Waves() (a, b float64) { return e.a, e.b }

func (e *Capacitor) setParent(fn func()) { e.onChange = fn }

type child interface {
	Element
	setParent(fn func())
}

// Series is a three-port series adaptor joining two child elements. Its
// upward port is adapted to the sum of the child port resistances.
type Series struct {
	p1, p2       Element
	r            float64
	port1Reflect float64
	a, b         float64
}

// NewSeries connects p1 and p2 in series.
func NewSeries(p1, p2 Element) *Series {
	s := &Series{p1: p1, p2: p2}
	for _, p := range []Element{p1, p2} {
		if c, ok := p.(child); ok {
			c.setParent(s.updateImpedance)
		}
	}

	s.updateImpedance()

	return s
}

func (s *Series) updateImpedance() {
	s.r = s.p1.PortResistance() + s.p2.PortResistance()
	s.port1Reflect = s.p1.PortResistance() / s.r
}

// PortResistance implements Element.
func (s *Series) PortResistance() float64 { return s.r }

// Reflected implements Element.
func (s *Series) Reflected() float64 {
	s.b = -(s.p1.Reflected() + s.p2.Reflected())
	return s.b
}

// Incident implements Element.
func (s *Series) Incident(a float64) {
	_, b1 := s.p1.Waves()
	_, b2 := s.p2.Waves()

	a1 := b1 - s.port1Reflect*(a+b1+b2)
	s.p1.Incident(a1)
	s.p2.Incident(-(a + a1))
	s.a = a
}

// Waves implements Element.
func (s *Series) Waves() (a, b float64) { return s.a, s.b }

// IdealVoltageSource is an unadapted root element imposing a voltage on the
// tree below it.
type IdealVoltageSource struct {
	next Element
	vs   float64
	a, b float64
}

// NewIdealVoltageSource attaches a source to the root of next.
func NewIdealVoltageSource(next Element) *IdealVoltageSource {
	return &IdealVoltageSource{next: next}
}

// SetVoltage sets the source voltage for the next scattering step.
func (v *IdealVoltageSource) SetVoltage(vs float64) { v.vs = vs }

// Incident accepts the wave reflected by the tree.
func (v *IdealVoltageSource) Incident(a float64) { v.a = a }

// Reflected returns the wave sent down the tree.
func (v *IdealVoltageSource) Reflected() float64 {
	v.b = -v.a + 2*v.vs
	return v.b
}

// Process runs one scattering step: waves travel up the tree to the source
// and back down.
func (v *IdealVoltageSource) Process(vs float64) {
	v.SetVoltage(vs)
	v.Incident(v.next.Reflected())
	v.next.Incident(v.Reflected())
}
