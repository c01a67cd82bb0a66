// Package envelope provides an Attack/Decay/Release envelope generator with
// overshoot-convergent exponential segments.
//
// Each segment integrates value towards a target placed beyond the segment
// end (1.15 for the attack, -0.15 for decay and release). The exponential
// crosses the segment end in exactly the configured time, so attack and decay
// finish in bounded time instead of approaching their level asymptotically.
package envelope
