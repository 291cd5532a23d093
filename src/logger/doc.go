// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Stdout is reserved for the generated manifest; every diagnostic this
// package emits goes to stderr so output redirection stays clean.
package logger
