// Package module defines the lifecycle contract shared by every editor
// subsystem and the registry the orchestrator builds them into.
//
// A module goes through three phases:
//
//   - construct: the orchestrator calls a Constructor; a failure leaves the
//     module absent from the Registry without aborting startup.
//   - wire: every module implementing Wirer receives its own Siblings view,
//     the registry minus itself.
//   - prepare: modules implementing Preparer are prepared strictly in the
//     orchestrator's fixed order. Prepare reports a Result that is either
//     OK, Recoverable or Fatal.
//
// Modules implementing Destroyer are torn down when the editor is destroyed.
package module
