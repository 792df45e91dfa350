// Package main hosts the prodpipe CLI entrypoint and command graph.
//
// The Cobra-based command tree covers identifier generation, ad-hoc image
// score routing, review queue operations, and configuration scaffolding.
// Commands open the SQLite store directly for one invocation at a time; the
// long-running surfaces (sweeper, HTTP API, metrics) live in prodpiped.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
