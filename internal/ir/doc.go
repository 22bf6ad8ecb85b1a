// Package ir provides the canonical value representation used to identify
// live queries and to compare their results.
//
// Two consumers depend on it:
//   - the live query engine keys its registry by QuerySignature and only
//     pushes a recomputed result when its Fingerprint changed
//   - the scenario harness serializes traces with MarshalCanonical so golden
//     files are byte-stable
//
// Numbers are integers only. Money is carried as decimal strings, so a float
// reaching this package is a bug and is rejected.
package ir
