// Package workflow holds the scheduling rules the orchestrator runs on
// top of the projection: which task an agent gets next, what context it
// is handed, when a reported issue spawns a hotfix task, and when the
// run is complete.
//
// Everything here is pure over the projection and the event list, so
// the service can evaluate it against tentative (not yet persisted)
// event batches.
package workflow
