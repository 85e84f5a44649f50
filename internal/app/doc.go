// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: load graph documents,
// apply pin assignments, evaluate, fire exec chains and export. It is
// decoupled from any specific entrypoint like a CLI.
package app
