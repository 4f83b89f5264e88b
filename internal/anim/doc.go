// Package anim defines the data model shared by every stage of a character
// animation: the header metadata, symbol/colour grids and the full/delta
// frame records that make up an encoded animation.
//
// The package is the common vocabulary of the encode and playback paths:
//
//   - [Meta]: header fields (geometry, frame rate, colour mode, ramp, palette)
//   - [Grid]: row-major symbols plus optional RGB triplets
//   - [Frame]: sealed sum type implemented by [Full] and [Delta]
//   - [Animation]: an immutable meta + frame sequence
//
// # Ownership
//
// A Grid is owned by the stage that produced it last. Stages hand grids to
// each other with [Grid.Clone]; later stages mutate their buffers in place
// when applying deltas, so sharing backing arrays across stages is a bug.
package anim
