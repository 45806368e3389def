// Package plan resolves shape requirements against target types and produces
// the binding plan consumed by the synthesizer.
//
// Resolution pipeline, per (shape, target) pair:
//  1. Parse the shape descriptor and build the target member table (both memoized)
//  2. For each requirement, list the target members that could serve it,
//     ranked: methods before fields, fields before lower-cased unexported fields
//  3. Check each candidate's signature with the compatibility ladder from match
//  4. Pick the single best fitting candidate; equal best candidates are ambiguous
//  5. Resolve chained requirements recursively in the same session
//  6. Emit diagnostics (unresolved members with suggestions, ambiguity lists,
//     chain failures, optional defaults)
package plan
