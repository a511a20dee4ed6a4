// Package astio moves analysis units between the external C/C++ parser and
// the engine. A dump holds the node tables of an ast.Builder plus the text
// of every source file its spans refer to, encoded as msgpack (.cast) or
// JSON (.json).
package astio
