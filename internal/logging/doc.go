// Package logger provides leveled logging for unlock-redux CLI commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with colored semantic prefixes.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only critical warnings and errors are shown.
//
// # Log Methods
//
//	Logger.Infof()        // Shown with --verbose or --debug
//	Logger.Debugf()       // Shown only with --debug
//	Logger.Warnf()        // Shown with --verbose or --debug
//	Logger.WarnfAlways()  // Always shown (critical warnings)
//	Logger.Errorf()       // Always shown
//	Logger.ErrorfAndReturn() // Always shown, then returned as an error
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Unlocking %d volumes", count)
//
// The root command creates a logger in its PersistentPreRunE and the
// command layer passes it to internal components. The zero value is a
// quiet logger that still reports warnings-always and errors, which is
// what non-interactive boot invocations want.
//
// Debug output may include diskutil command lines; passphrase arguments
// are redacted before they reach the logger.
package logger
