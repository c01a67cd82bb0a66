// Package tone measures the spectral features of a rendered voice: the
// strongest partial, the spectral centroid (a proxy for filter brightness)
// and the RMS level.
package tone
