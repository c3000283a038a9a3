// Package cli wires the orchestrator operations to the esaa command.
//
// Output contract: every successful command prints its result as
// indented JSON on stdout and exits 0, except that a result carrying
// verify_status mismatch or corrupted exits 2. Domain errors print
// {"error_code", "error_message"} on stderr and exit 1.
package cli
