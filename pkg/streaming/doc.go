// Package streaming implements the per-player, per-entity-type area of
// interest engine: for every (player, entity) pair it decides whether the
// entity should currently be visible ("streamed in") to that player's
// client, and emits the show/hide RPCs and onStreamIn/onStreamOut events
// that follow from a change in that decision.
//
// One Engine instance exists per pool of streamable entities (actors,
// vehicles, pickups, ...); all instances share the same eligibility and
// transition rules. The engine holds no position/visibility state on the
// entity itself — streamed-for membership lives in the engine, keyed by
// entity id and player id, so entity types stay plain data plus a small
// capability interface.
package streaming
