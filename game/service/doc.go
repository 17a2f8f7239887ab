// Package service ties the generator, solver, simulator, presets, and
// playtest sessions together behind the LevelService interface consumed
// by the REST, WebSocket, and MCP transports.
package service
