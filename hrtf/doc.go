// SPDX-License-Identifier: EPL-2.0

// Package hrtf maps directions to head-related impulse response pairs.
//
// Provider is the interface the renderer consumes. Dataset implements it
// over a finite set of measured (or synthesized) directions and answers each
// request with the nearest one, using the largest dot product between unit
// direction vectors, which is monotonic in great-circle separation.
//
// Two datasets are built in:
//
//   - NewAnalytic synthesizes a spherical-head model: Woodworth interaural
//     time difference plus the Brown-Duda one-pole head-shadow filter,
//     sampled on an azimuth/elevation grid. It needs no files.
//   - LoadDir reads a measured set stored as stereo WAV files using the MIT
//     KEMAR naming scheme (H<elev>e<azim>a.wav).
//
// # Conventions
//
// Azimuth is in degrees with 0 straight ahead and positive values to the
// listener's right, normalized to (-180, 180]. Elevation is in degrees,
// positive above ear level, clamped to [-90, 90]. Dataset formats that use a
// different convention are converted while loading and nowhere else.
//
// Requests with non-finite angles resolve to the front direction rather
// than failing, so a render never aborts halfway through on a bad curve
// value.
package hrtf
