// Package cli provides the letterdesk command-line client.
//
// Every operation is available as a cobra subcommand (login, letters list,
// draft, ...) for scripting, and through an interactive shell started when
// no subcommand is given. Both share one App, which wires the local session
// cache, the gRPC client, the session manager and the letter facade.
//
// The shell shows the signed-in user and the connectivity mode in its
// prompt; a background watcher pings the server every online-interval.
package cli
