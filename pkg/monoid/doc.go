// Package monoid holds the combination functions the merge operators apply
// to value attributes.
//
// A PlusFun is a commutative monoid operator used by MergeUnion and
// MergeAgg to fold colliding values; its identity must equal the default
// of the attribute it combines. A TimesFun is the multiplication used by
// MergeJoin; its annihilators must equal the defaults of the left and
// right attributes, and times of an annihilator with anything yields the
// result zero.
//
// MergeUnion and MergeAgg check the identity law on the identity itself
// and on the examples of the attribute type. MergeJoin checks times only
// on the annihilator pair. Proving the laws for every reachable value
// remains the caller's job.
package monoid
