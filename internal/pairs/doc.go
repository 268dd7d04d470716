// Package pairs plans and runs the pairwise comparisons of a contest
// day: which flight pairs need (re)computing, and a bounded worker pool
// that computes them and stores the results.
package pairs
