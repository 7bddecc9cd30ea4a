// Package mix implements the realtime half of the recorder: channel
// normalization, frame queueing and the sample-accurate two-stream mixer.
// Everything here works on interleaved PCM S16LE byte frames.
package mix

// UpmixMonoToStereo duplicates every mono sample into both channels.
// Frames with two or more channels pass through untouched; channel
// counts above two are accepted as-is rather than truncated.
func UpmixMonoToStereo(frame []byte, channels int) []byte {
	if channels != 1 || len(frame) < 2 {
		return frame
	}
	out := make([]byte, len(frame)*2)
	for i := 0; i+1 < len(frame); i += 2 {
		out[i*2] = frame[i]
		out[i*2+1] = frame[i+1]
		out[i*2+2] = frame[i]
		out[i*2+3] = frame[i+1]
	}
	return out
}
