package xmlconfig

import (
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/beevik/etree"
)

// SetElementValue sets the text of the element addressed by a slash-delimited
// tag path such as "/configuration/sitecore/dataFolder". The leading slash is
// optional and the first segment names the root. Segments that already exist
// are reused (first match); missing ones are appended as new children.
func SetElementValue(doc *etree.Document, path, value string) error {
	el, err := EnsureElement(doc, path)
	if err != nil {
		return err
	}
	el.SetText(value)
	return nil
}

// EnsureElement returns the element addressed by path, creating missing
// segments the same way SetElementValue does.
func EnsureElement(doc *etree.Document, path string) (*etree.Element, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrInvalidInput, "document is nil")
	}
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, errors.Newf(errors.ErrXMLPath, "empty element path %q", path)
	}

	root := doc.Root()
	switch {
	case root == nil:
		root = doc.CreateElement(segments[0])
	case root.Tag != segments[0] && root.FullTag() != segments[0]:
		return nil, errors.Newf(errors.ErrXMLPath, "path %q does not start at root <%s>", path, root.FullTag()).
			WithDetail("path", path)
	}

	current := root
	for _, seg := range segments[1:] {
		next := current.SelectElement(seg)
		if next == nil {
			next = current.CreateElement(seg)
		}
		current = next
	}
	return current, nil
}

// GetElementValue returns the text of the element addressed by path and
// whether it exists.
func GetElementValue(doc *etree.Document, path string) (string, bool) {
	if doc == nil || doc.Root() == nil {
		return "", false
	}
	segments := splitPath(path)
	if len(segments) == 0 {
		return "", false
	}
	current := doc.Root()
	if current.Tag != segments[0] && current.FullTag() != segments[0] {
		return "", false
	}
	for _, seg := range segments[1:] {
		current = current.SelectElement(seg)
		if current == nil {
			return "", false
		}
	}
	return current.Text(), true
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
