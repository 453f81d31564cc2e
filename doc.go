// Package reactstream implements the core of a reactive-streams processing
// runtime: typed dataflow graphs of nodes that communicate through a
// demand-driven pull/push protocol, scheduled synchronously within a
// region or asynchronously across one via a mailbox.
//
// The package exposes node constructors for a representative set of
// stages (Map, PrefixAndTail, FanOut, FlattenConcat, Coupling, PushSource),
// a port-binding API, and a region seal/run API. Graph-building DSLs,
// introspection, and application-facing node catalogs live outside this
// package.
package reactstream
