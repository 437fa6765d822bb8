// Package main hosts the qaueue CLI entrypoint and command graph.
//
// The Cobra command tree resolves user references (queue indices, URLs, item
// ids), calls the engine, and renders the result as a table, JSON, or YAML.
// Configuration, logging, and the backend connection are resolved once per
// invocation by commandContext so subcommands only describe the interaction.
//
// Queue semantics live in internal/engine and the store packages; keep this
// package limited to parsing and presentation.
package main
