// Package main hosts the vidplan CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the logger, and
// hands plan files, caption files, and run history to the internal packages.
// Resolution, caption processing, and persistence live in internal/; commands
// here only parse flags and render results.
package main
