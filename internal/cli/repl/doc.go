// Package repl implements the interactive shell of the sessionkit CLI.
//
// Every line is split like a shell command and handed to an Executor, so
// commands typed in the shell share one in-process session. A line ending
// in "?" lists the commands starting with the text before it. History is
// kept in ~/.sessionkit/history.
package repl
