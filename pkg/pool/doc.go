// Package pool provides the fixed-capacity slot allocator that backs every
// pooled entity kind in the server core (players, actors, vehicles,
// pickups, text labels, gang zones, objects).
//
// An id is valid iff its slot is occupied. Freeing a slot while any
// release-lock on it is held defers physical destruction until the last
// lock drops: the slot is marked tombstoned and no new allocation reuses
// that id until the release completes. Insertion scans from the lowest
// free id so ids are reused deterministically, and iteration yields
// entries in id order, tolerating tombstones created mid-iteration by
// handlers invoked during that same iteration.
package pool
