// Package utils provides shared utility functions for Unlock-Redux.
//
// This package contains general-purpose helpers used across multiple packages.
// Functions are organized into logical groups:
//
// # Terminal Utilities
//
// Functions for interactive input:
//   - ReadPassphrase: reads a passphrase from a terminal without echo
//   - PromptLine: reads one line of regular input
//   - IsTerminal: checks whether stdin is a terminal
//
// # System Utilities
//
// Functions for interacting with the operating system:
//   - GetUsername: returns the current system username
package utils
