// Package audioin owns an audio capture stream and the analysis that
// turns raw sample blocks into control levels.
//
// A Stream de-interleaves the device callback into per-channel ring
// buffers; consumers take block snapshots on their own schedule and run
// them through a Detector (time-domain envelope follower) or an
// Analyzer (FFT band-energy share). Device failures are soft: when no
// input device opens the Stream stays inactive and snapshots stay
// silent, so a rig without a soundcard still runs with default values.
package audioin
