// Package application provides application initialization and dependency wiring.
// It publishes the bootstrapped settings store into the read-only snapshot and
// builds the handlers, router and HTTP server, keeping the main package focused
// on CLI parsing and orchestration.
package application
