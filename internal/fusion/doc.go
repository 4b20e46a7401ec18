// Package fusion combines several attention features into one map.
//
// Fuse evaluates each feature on the same image, scales each normalized map by
// its weight (weights are rescaled to sum to 1) and adds the results in the
// order the features were given. The sum is clipped to [0, 1] to absorb
// floating-point rounding.
//
// FuseConcurrent evaluates the features in parallel but accumulates in the same
// order, so for a given input it returns exactly the same map as Fuse.
package fusion
