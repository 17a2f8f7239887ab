// Package api exposes the level generator, validator, solver and
// playtest sessions over a REST interface, plus a WebSocket endpoint
// for live state updates.
package api
