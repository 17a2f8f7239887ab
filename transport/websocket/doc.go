// Package websocket pushes live simulation state to playtest viewers.
//
// A single Hub fans out per-session state updates to every connected
// client watching that session. Clients are write-only from the server's
// perspective; the read pump exists to detect disconnects and answer
// pings.
package websocket
