// Package shutdown coordinates graceful process termination: it waits for
// SIGINT/SIGTERM (or an explicit Trigger) and then runs the registered
// cleanup hooks in reverse order under a deadline.
package shutdown
