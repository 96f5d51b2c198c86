// Package store defines the authoritative remote reminder store port the
// alarm coordinator reconciles against, plus two implementations: an
// in-memory store for tests and seeding, and a SQLite-backed store used by
// the agent binary.
//
// Transport and encoding concerns stay behind the Store interface; the
// coordinator only distinguishes "no response" from "server rejection" via
// the exported sentinel errors.
package store
