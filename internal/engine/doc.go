// Package engine implements the chat core: the registries of live clients
// and rooms, per-room and directory broadcast fan-out, and the forwarder
// goroutines that bridge a shared topic to one client's outbound sink.
//
// Ownership is strictly top-down: the Engine's registries are the single
// strong owner of every Client and Room. Everything else - back-references
// and forwarder goroutines included - holds ids and re-resolves them
// through the registries on each use, so a removed entity is observed as
// a failed lookup rather than kept alive by stale pointers.
package engine
