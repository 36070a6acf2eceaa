// Package provision performs the one-time dev box setup: installs the
// nginx/php package set, writes server configuration, restarts services and
// installs the login welcome message.
//
// The catalog core treats everything here as external collaborators; the
// interesting behavior is the ordering in Setup.Run and the policy that a
// missing package is a warning while a failed service restart is fatal.
// System commands go through the Runner interface so tests can substitute
// a recorder.
package provision
