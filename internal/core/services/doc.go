// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Compose is pure and performs no I/O. Publish, lint and stats reach
// storage only through the driven ports.
package services
