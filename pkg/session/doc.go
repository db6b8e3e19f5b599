// Package session persists the last export dialog values and the export
// history in a local SQLite database.
//
// The store holds two tables:
//
//   - session_state: a single row with the last layer, attribute field,
//     target CRS and default Z entered interactively
//   - export_history: one row per export run, keyed by run ID
//
// Store implements export.HistoryRecorder, so it can be handed straight to
// export.WithHistory.
package session
