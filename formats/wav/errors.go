// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedEncoding  = errors.New("only integer PCM WAV is supported")
	ErrUnsupportedBitDepth  = errors.New("unsupported PCM bit depth")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrNoChannels           = errors.New("no channels to write")
)
