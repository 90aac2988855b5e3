// Package monitor tracks target availability across checks and decides which
// notifications each check produces.
//
// The decision logic is pure: Tracker values go in, new Tracker values and a list of
// notifications come out. Monitor owns the current Tracker, runs a check, applies the
// outcome and delivers the resulting messages. Notifications fire only on state
// transitions, and an operator alert is raised after EscalationThreshold consecutive
// failed checks.
package monitor
