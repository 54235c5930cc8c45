// Package command defines the sessionkit CLI.
//
// Commands are built with urfave/cli/v2. A single invocation opens one
// client (credential store, HTTP wrapper and session manager), runs the
// command and closes the client. The shell command keeps that client open
// and runs every line it reads through the same App.
package command
