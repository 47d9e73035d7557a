// Package fileset classifies project files by extension and enforces the
// composition a project needs before generation: exactly one JSON schema and
// exactly one XSD or XML schema, plus any number of test-data files.
//
// It also compares two snapshots of a project's file set so an edit session
// can tell whether regeneration is warranted.
package fileset
