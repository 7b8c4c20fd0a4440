// Package execution is the relational algebra over sorted, named-attribute
// tuples.
//
// Queries are trees of TupleOp nodes built bottom-up through the
// constructors in this package. Each node derives its result schema from
// its parents once, at construction, and every shape or law violation is
// reported there. Run returns a lazy, pull-based iterator; each node pulls
// from fresh iterators of its parents and never buffers more than one row
// group, except Sort, which materializes its input.
//
// # Operators
//
//   - Load is a placeholder for a table that must be bound before running,
//     typically by Transform.
//   - Empty, LoadData and LoadOnce are the data leaves.
//   - Ext applies a flatmap ExtFun, prepending the parent's keys.
//   - Rename renames attributes.
//   - Sort reorders the key attributes and sorts by the new order.
//   - MergeUnion merges two inputs on their common key prefix, combining
//     values with PlusFuns. MergeAgg is a MergeUnion against an Empty
//     input and collapses duplicate keys.
//   - MergeJoin joins two inputs on their common keys, multiplying values
//     with TimesFuns and expanding matching row groups.
//
// # Execution
//
// Execution is single threaded. Iterators own their cursors exclusively;
// running the same tree twice yields two independent pipelines, except for
// LoadOnce whose single-use source is shared.
//
// Merge algorithms assume each input is non-decreasing in its key order.
// WithSortCheck turns that assumption into a runtime check.
package execution
