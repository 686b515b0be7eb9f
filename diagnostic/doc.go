// Package diagnostic provides structured warnings, errors, and
// explanations for authoring-time mask declaration checks.
//
// Key capabilities:
//   - Missing whitelist / unknown entity reports
//   - Unknown converter and transformer binding reports
//   - Explanation of projection decisions
package diagnostic
