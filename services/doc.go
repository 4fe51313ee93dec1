// Package services holds the adjudication workflow: the rules governing which status a
// case may transition to, the outcome and hearing-outcome records that accompany each
// transition, the punishment lifecycle, and the migration reconciliation that brings
// legacy (NOMIS) records into the same state machine.
//
// Every operation loads the whole aggregate, validates before mutating, mutates the
// in-memory graph, and saves the aggregate once. Transitions that must mirror into the
// legacy system call the gateway before the local save, so a gateway failure leaves
// local state unchanged.
//
// Concurrent requests against the same charge are not serialized; the database write is
// the only concurrency boundary and the later save wins. Write concurrency per charge
// is low in practice (one human actor progresses one case at a time).
package services
