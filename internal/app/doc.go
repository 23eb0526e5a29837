// Package app contains the core application logic. It defines the App
// struct with its configuration and the command implementations (palette
// listing, single-file and batch conversion), decoupled from the CLI
// entrypoint that parses arguments.
package app
