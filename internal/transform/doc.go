// Package transform holds the preprocessing stages of a pipeline: missing value
// imputation, normalization and categorical encoding.
//
// Every function is pure. The input table is never modified; a new table is
// returned. Non-selected columns pass through untouched.
package transform
