// Package logging provides the subsystem-tagged logger used across mammut.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute
// so that verbose output can be traced back to the component that produced it.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelForVerbosity(verbose), os.Stderr)
//
//	logging.Debug("Mastodon", "POST %s", endpoint)
//	logging.Warn("Login", "could not open browser")
//	logging.Error("Store", err, "failed to write %s", path)
//
// Log output is meant for diagnosis and goes to stderr. Progress lines meant
// for the user are printed by the cmd package to stdout.
package logging
