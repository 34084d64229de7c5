// Package textutil provides the string comparison helpers that configured
// schemas plug into record fields.
//
// The helpers are:
//   - Ratio: normalized indel similarity on a 0-100 scale, computed from the
//     longest common subsequence of the two strings' code points
//   - Fold: Unicode case folding for case-insensitive equality
//   - Fingerprint and CosineSimilarity: token-frequency vectors compared by
//     cosine similarity
//
// Tokenization folds case, splits on non-alphanumeric characters, and drops
// tokens shorter than 3 characters.
package textutil
