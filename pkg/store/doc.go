// Package store executes parameterized SQL against the relational store.
//
// Executor is the boundary with database/sql: it runs statements, caches
// prepared statements by name and converts every driver failure into a
// Result carrying a core.KindStore error instead of returning it. Store
// layers the generic row operations (Find, Insert, Update, Delete, List,
// Count) on top of the pkg/query builder.
//
// CRUD operations issue no transactions. Statements that span several
// operations are not atomic.
package store
