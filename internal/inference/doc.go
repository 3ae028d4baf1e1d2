// Package inference implements the in-process models a pipeline node can run:
// ordinary least squares regression, a Gini decision tree, one dimensional
// k-means, k-nearest-neighbours, a two class threshold classifier and a
// nearest-rows voting ensemble.
//
// Algorithms read numeric values lazily from raw table cells. Rows whose cells
// cannot be parsed are skipped. Preconditions that make a result meaningless
// (no column selected, k out of range, zero variance, wrong class count) are
// reported as *types.ConfigError.
package inference
