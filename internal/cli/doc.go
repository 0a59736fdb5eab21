// Package cli provides the interactive passvault command-line client.
//
// App is a small state machine: Onboarding when no vault exists yet, Locked
// until the master code is verified, then MainMenu, where runREPL reads
// commands until the user exits. Commands are a closed enum resolved by
// parseCommand and executed by dispatch.
//
// Revealing, editing and deleting entries, exporting and changing the master
// code all re-run the authentication gate first.
package cli
