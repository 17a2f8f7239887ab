// Package engine provides the core simulation logic for ShadeChange
// levels.
//
// The engine package implements:
//   - The two-layer grid model (white and black fields) with border exits
//   - Sliding movement: entities advance until stopped by a block or the
//     grid edge
//   - Field switching with crush/kill resolution
//   - Trace recording and the three-way verdict classification
//
// Core Types:
//
// Level holds the two passability layers plus start and exit markers.
// LevelState is the mutable simulation state, Engine wraps it for
// interactive play, and Simulate/Classify run a whole move sequence in
// one call for batch validation.
//
// Usage:
//
//	level, err := engine.NewLevel(4, 4, engine.Position{X: 3, Y: 2}, engine.Position{X: 4, Y: 1})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := engine.Simulate(level, moves, 9)
//	if err != nil {
//		log.Fatal(err)
//	}
//	verdict := engine.Classify(res)
//
// Game Rules:
//
// The player occupies one cell and one of two overlaid fields is active.
// Directional moves slide the player (and any enemies of the active
// field) until a block or the grid edge stops them; sliding onto the
// exit, which sits just outside the border, solves the level. Switching
// fields keeps the position but is fatal if the destination field holds
// a block (crushed), an enemy, or a spiral (killed).
package engine
