// Package pipeline runs named, ordered sequences of steps against a shared
// arguments object.
//
// A Pipeline binds a name to an ordered list of steps and the validators for
// its arguments type. The Runner looks a pipeline up by name, validates the
// arguments, then executes each step in order:
//
//	validators --ok--> step 1 --> step 2 --> ... --> Completed
//	     |               |
//	     +--> INVALID    +--> first failure aborts (no rollback)
//
// Steps whose ShouldRun reports false are recorded as Skipped without being
// run. Every step start and finish is reported to the registered hooks; the
// default hook logs through zerolog.
//
// Arguments are a mutable bag owned by one run. Earlier steps may attach
// results (the created instance, for example) that later steps read.
package pipeline
