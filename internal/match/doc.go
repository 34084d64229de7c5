// Package match scores candidate cluster pairs with the Fellegi-Sunter
// log-likelihood model.
//
// Every non-excluded field contributes log(m/u) when its predicate reports a
// match and log((1-m)/(1-u)) otherwise; the pair weight is the sum across
// fields. How multi-member clusters are reduced to one outcome per field is
// the Linkage policy:
//
//   - BestEvidence (default) evaluates the Cartesian product of the two
//     member lists per field and keeps the outcome with the larger
//     contribution, so one outlier member cannot veto a merge.
//   - AllPairs sums the full reference-pair weight over the product.
//
// A field pair where either value is missing contributes nothing. The Scorer
// is pure and safe for concurrent use.
package match
