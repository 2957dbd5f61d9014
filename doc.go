// Package parlex builds the lookup tables that let a data-parallel
// scan tokenize input in O(log n) depth. It lifts each byte of a
// deterministic finite automaton's alphabet into a "parallel state",
// a total mapping from DFA states to transitions, and then saturates
// the set of parallel states under function composition. The result
// is a merge table that makes composition an associative operation
// with an identity, which is exactly what a prefix-scan kernel needs.
// The package also provides a YAML grammar layer for describing the
// lexical grammar, compilation of that grammar to a DFA, and
// serialization and caching of the built tables; the scan kernel that
// consumes the tables at run time is not part of this package.
package parlex
