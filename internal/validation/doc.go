// Package validation scores image quality check results.
//
// Scoring is a pure weighted average over the checks actually present,
// re-normalized by the weight they carry, mapped onto accept/review/reject
// routing by inclusive thresholds.
package validation
