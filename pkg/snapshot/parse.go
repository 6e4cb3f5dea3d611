package snapshot

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/devicelab-dev/element-resolver/pkg/core"
)

// HierarchyClass is the class of the synthetic root wrapping multiple windows.
const HierarchyClass = "hierarchy"

// Parse parses an Android UI hierarchy XML dump into a Tree.
// Supports both formats:
// - UIAutomator dump: uses class name as element tag (e.g., <android.widget.FrameLayout>)
// - Appium format: uses <node> elements
//
// A dump with several top-level windows is wrapped under one synthetic
// root whose bounds are the union of the windows.
func Parse(xmlData string) (*Tree, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlData))

	var roots []*Element
	foundHierarchy := false
	var parseElement func() (*Element, error)

	parseElement = func() (*Element, error) {
		for {
			token, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			switch t := token.(type) {
			case xml.StartElement:
				if t.Name.Local == "hierarchy" {
					foundHierarchy = true
					continue
				}

				elem := &Element{
					Class:   t.Name.Local,
					Enabled: true,
				}
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "text":
						elem.Text = attr.Value
					case "resource-id":
						elem.ResourceID = attr.Value
					case "content-desc":
						elem.ContentDesc = attr.Value
					case "class":
						elem.Class = attr.Value
					case "package":
						elem.Package = attr.Value
					case "bounds":
						elem.Bounds = ParseBounds(attr.Value)
					case "enabled":
						elem.Enabled = attr.Value == "true"
					case "clickable":
						elem.Clickable = attr.Value == "true"
					}
				}

				for {
					child, err := parseElement()
					if err != nil || child == nil {
						break
					}
					elem.Children = append(elem.Children, child)
				}
				return elem, nil

			case xml.EndElement:
				return nil, nil
			}
		}
	}

	var parseErr error
	for {
		elem, err := parseElement()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				parseErr = err
			}
			break
		}
		if elem != nil {
			roots = append(roots, elem)
		}
	}

	if parseErr != nil && len(roots) == 0 {
		return nil, core.ErrInvalidSnapshot.WithCause(parseErr)
	}
	if !foundHierarchy {
		return nil, core.ErrInvalidSnapshot.WithMessage("invalid page source: no hierarchy element found")
	}

	switch len(roots) {
	case 0:
		return Build(nil), nil
	case 1:
		return Build(roots[0]), nil
	}

	wrapper := &Element{Class: HierarchyClass, Enabled: true, Children: roots}
	for _, r := range roots {
		wrapper.Bounds = wrapper.Bounds.Union(r.Bounds)
	}
	return Build(wrapper), nil
}

// ParseBounds parses Android bounds string "[x1,y1][x2,y2]" to Bounds.
// Malformed input and inverted rectangles yield zero-size bounds.
func ParseBounds(s string) core.Bounds {
	s = strings.ReplaceAll(strings.TrimSpace(s), "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return core.Bounds{}
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return core.Bounds{}
		}
		v[i] = n
	}

	b := core.Bounds{X: v[0], Y: v[1], Width: v[2] - v[0], Height: v[3] - v[1]}
	if b.Width < 0 {
		b.Width = 0
	}
	if b.Height < 0 {
		b.Height = 0
	}
	return b
}
