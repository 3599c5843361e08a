// Package xmlconfig computes effective configuration documents by layering
// overlay fragments on top of a base document.
//
// A configuration node is an *etree.Element: a tag, an ordered attribute
// list, ordered children and optional text. Two sibling elements are the same
// configuration point when they have the same tag and exactly the same set of
// attributes (names and values, order ignored):
//
//	<d><n1 a1="v1">x</n1></d>  +  <d><n1 a2="v2">y</n1></d>
//	  = <d><n1 a1="v1">x</n1><n1 a2="v2">y</n1></d>
//
//	<d><n1 a1="v1"><nn1/></n1></d>  +  <d><n1 a1="v1"><nn2/></n1></d>
//	  = <d><n1 a1="v1"><nn1/><nn2/></n1></d>
//
// Matched points merge recursively in the base position; overlay children
// without a match are appended after the existing children in overlay order.
// Base children are never removed or reordered and base text is kept.
//
// Merging is a pure function. Inputs are never modified, so documents may be
// merged concurrently.
package xmlconfig
