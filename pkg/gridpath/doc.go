// Package gridpath is the entry point of the grid pathfinding engine.
//
// An Engine ties a classification source to the generator and the request
// queue:
//
//   - Generate: classify a new Map from a Config.
//   - FindPathImmediate: search on the calling goroutine and get a ready Path.
//   - RequestPath: queue a search and get a pending Path.
//   - Update: re-classify part of a Map after the world changed.
//   - IndexesBetween: enumerate the cells inside a world-space rectangle.
//
// Maps, Paths and Options are the types of the navgrid and pathfind packages,
// re-exported here so most callers need a single import.
package gridpath
