// Package postgres contains the PostgreSQL implementations of the store
// interfaces, built on database/sql with the pgx driver. SQLSTATE codes
// from pgconn are translated into the sentinel errors defined in the store
// package so callers never depend on driver details.
package postgres
