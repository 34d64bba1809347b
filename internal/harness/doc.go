// Package harness runs conformance scenarios against compiled models.
//
// A scenario is a YAML file naming a model, a seed, and a set of
// assertions over the final grid. The harness compiles the model, runs
// it to termination, evaluates the assertions, and can snapshot the
// final render for golden-file comparison.
//
// Scenarios exist to pin observable behavior: the same model and seed
// must produce the same final grid on every engine version, and the
// assertions state the properties a model is supposed to guarantee
// (a fill leaves no empty cells, a growth front reaches the rim, and
// so on). Engine changes that alter any pinned outcome show up as
// scenario failures rather than silent drift.
package harness
