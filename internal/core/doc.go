// Package core provides the business logic for the master-data console.
//
// This package contains all domain logic independent of any UI or transport
// layer: which tables are administrable, how rows are listed, inserted and
// toggled, and how CSV imports are processed. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around four collaborators:
//
//   - Catalog: discovers master tables and their columns from the live
//     database schema. The table list is cached for a short TTL; column
//     descriptors are cached for the process lifetime.
//   - Service: the entry point for row operations (list, get, insert,
//     toggle) and CSV imports. All SQL identifiers come from the Catalog's
//     introspected names; all data values are bound parameters.
//   - Store: keeps failed import rows in memory for a bounded retention
//     window so they can be re-downloaded as a corrective CSV.
//   - MapError: translates technical errors into user-facing messages
//     with stable support codes.
//
// # Table Discovery
//
// Tables are not registered in code. Any table in the configured schema
// whose name ends with the master suffix (default "_master") is
// administrable:
//
//	catalog := core.NewCatalog(pool, "public", "_master", 30*time.Second)
//	tables, err := catalog.ListTables(ctx)
//
// [Catalog.IsAllowed] is the single authorization gate for every
// table-name parameter accepted from a client and is re-checked on every
// request.
//
// # CSV Import
//
// [Service.ImportCSV] parses an uploaded file and inserts rows one at a
// time. Each row succeeds or fails on its own; a failure never aborts or
// rolls back any other row. Failed rows keep their original cells, their
// line number, and a reason, and are retained by the [Store] under a
// random retrieval id for a short window.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - TBL001: unknown or unmanaged table
//   - VAL001-VAL002: request validation errors
//   - OP001: operation not supported by the table
//   - DB001-DB003: database errors (duplicates, missing rows, connections)
//   - FILE001: unparseable upload
package core
