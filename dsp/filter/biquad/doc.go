// Package biquad provides a Direct Form II Transposed second-order section and
// the RBJ lowpass design used for oversampling anti-alias stages.
package biquad
