// Package dispatch is a generic command parsing and dispatch framework.
// Hosts register commands as ordered chains of literal and variable
// components; the package stores them in a trie, matches tokenized input
// against it, populates a per-invocation context with parsed values, and
// coordinates parsing, postprocessing, and handler execution across
// configurable executors. It also produces tab-completion suggestions for
// partially typed input.
//
// The sender type C is opaque to the framework: it is only handed to
// permission checks, parsers, and handlers. The package has no I/O of its
// own; game servers, chat bots, and CLIs supply the glue.
package dispatch
