// Package match provides name normalization, Levenshtein distance calculation,
// reflect-based type compatibility scoring, compiled value converters and
// candidate ranking for shape member binding.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - ScoreTypeCompatibility: scores identical > assignable > widening > narrowing
//   - ScoreByRef: scores pointer (by-reference and output) parameters
//   - NewConverter: compiles the value conversion for a scored pair
//   - Suggest: lists the closest target members for diagnostics
package match
