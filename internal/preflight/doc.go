// Package preflight provides readiness checks for the files and directories
// annodocs depends on.
//
// The CLI "annodocs check" command runs RunAll and prints one status line
// per result. Checks never modify anything; a missing output or state
// directory passes when it can be created.
package preflight
