// SPDX-License-Identifier: EPL-2.0

// Package render is the binaural pipeline: it takes a mono recording and a
// spatial plan and returns finished stereo.
//
//	resample -> trim silence -> curves -> distance model
//	         -> HRIR convolution -> reverb mix -> finish
//
// A Renderer is built once from a config.Config and holds only read-only
// state, so one Renderer may serve concurrent Render calls. Plan and HRTF
// failures abort a render. An empty plan, downmixed input and non-finite
// samples are recovered and logged at warn level.
//
// Every stage runs in its own trace span, and renders are counted through
// the otel metric API. Both use the global providers unless options
// override them.
package render
