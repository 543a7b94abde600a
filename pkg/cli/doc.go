// Package cli provides the command-line interface for fakerest.
//
// The cli package implements all CLI commands:
//   - serve: Run the mock server in the foreground with graceful shutdown
//   - validate: Check a configuration file and report every problem at once
//   - routes: Render the resolved route table a server would serve from
//   - init: Create a starter configuration file, interactively or scaffolded
//   - version: Show fakerest version
//
// Configuration layers, lowest to highest precedence:
//   - Built-in defaults
//   - Global config (~/.config/fakerest/config.yaml)
//   - Local config (.fakerestrc.yaml in the current directory)
//   - FAKEREST_* environment variables
//   - Command-line flags
//
// The route config file itself (fakerest.yaml) sits below all of these for
// server settings: its server section is the base the CLI layers override.
//
// Every command honors the persistent --json flag: with it, stdout carries
// only the JSON result and prose goes to stderr or is dropped.
//
// Usage:
//
//	fakerest init
//	fakerest validate --config fakerest.yaml --schema
//	fakerest routes --config fakerest.yaml
//	fakerest serve --config fakerest.yaml --port 3000
//	fakerest serve --port 0 --print-url
//	fakerest version --json
package cli
