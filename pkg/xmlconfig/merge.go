package xmlconfig

import (
	"sort"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/beevik/etree"
)

// Corresponds reports whether a and b denote the same configuration point:
// equal tags and equal attribute sets, ignoring attribute order.
func Corresponds(a, b *etree.Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.FullTag() != b.FullTag() {
		return false
	}
	if len(a.Attr) != len(b.Attr) {
		return false
	}
	return attrKey(a) == attrKey(b)
}

// attrKey flattens the attribute set into a canonical string.
func attrKey(e *etree.Element) string {
	pairs := make([]string, 0, len(e.Attr))
	for _, a := range e.Attr {
		pairs = append(pairs, a.FullKey()+"\x00"+a.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x01")
}

// Merge returns a new element holding overlay layered on top of base. The
// caller has already decided that base and overlay are the same node, so their
// own tags and attributes are not compared; base's tag, attributes and text
// are kept.
func Merge(base, overlay *etree.Element) *etree.Element {
	if base == nil {
		if overlay == nil {
			return nil
		}
		return overlay.Copy()
	}
	merged := base.Copy()
	if overlay != nil {
		mergeInto(merged, overlay)
	}
	return merged
}

// mergeInto layers overlay's element children onto target in place. target is
// always a private copy.
func mergeInto(target, overlay *etree.Element) {
	for _, oc := range overlay.ChildElements() {
		if tc := findCorresponding(target, oc); tc != nil {
			mergeInto(tc, oc)
			continue
		}
		target.AddChild(oc.Copy())
	}
}

// findCorresponding scans target's current children, including ones appended
// earlier from the same overlay.
func findCorresponding(target, child *etree.Element) *etree.Element {
	for _, c := range target.ChildElements() {
		if Corresponds(c, child) {
			return c
		}
	}
	return nil
}

// MergeAll folds overlays onto base from left to right.
func MergeAll(base *etree.Element, overlays ...*etree.Element) *etree.Element {
	merged := Merge(base, nil)
	for _, o := range overlays {
		if o == nil {
			continue
		}
		if merged == nil {
			merged = o.Copy()
			continue
		}
		mergeInto(merged, o)
	}
	return merged
}

// MergeDocuments layers overlay documents onto base and returns a new
// document. Root elements must share a tag. Namespace declarations found on
// an overlay root are carried to the result root so prefixed attributes from
// the overlay stay well formed.
func MergeDocuments(base *etree.Document, overlays ...*etree.Document) (*etree.Document, error) {
	if base == nil || base.Root() == nil {
		return nil, errors.New(errors.ErrXMLMerge, "base document has no root element")
	}
	out := base.Copy()
	root := out.Root()
	for i, o := range overlays {
		if o == nil || o.Root() == nil {
			continue
		}
		or := o.Root()
		if or.FullTag() != root.FullTag() {
			return nil, errors.Newf(errors.ErrXMLMerge,
				"cannot merge <%s> into <%s>", or.FullTag(), root.FullTag()).
				WithDetail("overlay", i)
		}
		carryNamespaces(root, or)
		mergeInto(root, or)
	}
	return out, nil
}

func carryNamespaces(dst, src *etree.Element) {
	for _, a := range src.Attr {
		if a.Space != "xmlns" && !(a.Space == "" && a.Key == "xmlns") {
			continue
		}
		if dst.SelectAttr(a.FullKey()) == nil {
			dst.CreateAttr(a.FullKey(), a.Value)
		}
	}
}
