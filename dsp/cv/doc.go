// Package cv provides the control-signal primitives modular host modules are
// built from: hysteresis triggers, clock dividers, peak followers and
// indicator lights.
//
// All types are single-threaded and allocation-free. They are meant to be
// owned by one module instance and advanced from its per-sample process call.
package cv
