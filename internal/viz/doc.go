// Package viz is the terminal player for encoded animations.
//
// The package implements a Bubble Tea program over [player.Player]:
//
//   - [Model]: plays one resolved animation with a timeline and change chart
//   - [Canvas]: turns a grid into styled terminal rows
//   - [Browser]: picks an animation from the on-disk library and plays it
//
// # Key Bindings
//
//	Space - Play/Pause
//	S     - Stop and rewind
//	←/→   - Step one frame
//	Home  - First frame, End - last frame
//	+/-   - Playback speed
//	T     - Cycle color themes
//	C     - Toggle change chart
//	?     - Show help overlay
//
// Ticks are only scheduled while the player is playing, so a paused or
// stopped player costs nothing.
package viz
