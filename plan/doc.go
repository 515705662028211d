// SPDX-License-Identifier: EPL-2.0

// Package plan holds the time keyed spatial plan that drives a render.
//
// A plan is a list of keyframes, each placing the virtual source at an
// azimuth, elevation and distance at a point in time, together with the
// reverb mix wanted there:
//
//	[
//	  {"time": 0, "azimuth": -90, "elevation": 0, "distance": 1.0, "reverb_mix": 0.1},
//	  {"time": 2, "azimuth":  90, "elevation": 0, "distance": 0.5, "reverb_mix": 0.3}
//	]
//
// Load validates generic records (decoded JSON or YAML) and returns an
// immutable Plan sorted by time. Missing, non-numeric, non-finite or out of
// range fields and duplicate times fail with a *ValidationError that matches
// ErrInvalidKeyframe. reverb_mix is the one field that is repaired: values
// outside [0, 1] are clamped.
//
// An empty record list yields a plan with a single centered keyframe one
// meter away and no reverb; Defaulted reports that case so callers can warn.
//
// Angles use one convention everywhere in this module: azimuth 0 is straight
// ahead, positive azimuth is to the listener's right, range (-180, 180];
// elevation is positive above ear level.
package plan
