// Package store defines the persistence interfaces the services depend on,
// the sentinel errors those interfaces return, and the transaction helper
// that groups related writes into a single atomic unit.
package store
