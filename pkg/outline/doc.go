// Package outline extracts the group and test tree that Go test files
// register on a lifecycle session, without running them.
//
// Files are parsed with tree-sitter, so an outline is available for code that
// does not compile.
package outline
