// Package query builds parameterized SQL fragments.
//
// Every value that reaches SQL text goes through a Params binder and is
// emitted as a positional $N placeholder; only validated identifiers are
// ever interpolated. The fragments produced here are assembled into full
// statements by pkg/store.
package query
