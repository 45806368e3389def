// Package diagnostic provides structured binding failures and the
// sentinel errors of the duck typing engine.
//
// Key capabilities:
//   - Unresolved member reports with the closest candidates found
//   - Ambiguous member reports naming every equally ranked candidate
//   - Invalid shape and synthesis inconsistency errors
//   - BindingError, matchable with errors.Is against the sentinels
package diagnostic
