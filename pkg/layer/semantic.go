package layer

import (
	"strings"

	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
)

// SemanticType is the structural role of a node on screen.
type SemanticType string

// SemanticType values
const (
	TypeNormal           SemanticType = "normal"
	TypeDrawerLayout     SemanticType = "drawer_layout"
	TypeDrawerContent    SemanticType = "drawer_content"
	TypeMainContent      SemanticType = "main_content"
	TypeBottomNavigation SemanticType = "bottom_navigation"
	TypeTopBar           SemanticType = "top_bar"
	TypeDialog           SemanticType = "dialog"
	TypePopup            SemanticType = "popup"
	TypeFAB              SemanticType = "fab"
	TypeSystemUI         SemanticType = "system_ui"
)

// SemanticTypes lists every type in ascending boost order.
var SemanticTypes = []SemanticType{
	TypeNormal, TypeDrawerLayout, TypeMainContent, TypeTopBar, TypeBottomNavigation,
	TypeFAB, TypeDrawerContent, TypePopup, TypeDialog, TypeSystemUI,
}

// semanticBoost lifts whole layers above regular content. Each step is far
// larger than any depth/sibling/order contribution of a realistic tree.
var semanticBoost = map[SemanticType]int{
	TypeNormal:           0,
	TypeDrawerLayout:     0,
	TypeMainContent:      0,
	TypeTopBar:           100_000,
	TypeBottomNavigation: 200_000,
	TypeFAB:              300_000,
	TypeDrawerContent:    400_000,
	TypePopup:            500_000,
	TypeDialog:           600_000,
	TypeSystemUI:         700_000,
}

// Boost returns the z-index boost of a semantic type.
func Boost(t SemanticType) int {
	return semanticBoost[t]
}

// IsOverlay reports whether the type sits visually above normal content.
func IsOverlay(t SemanticType) bool {
	switch t {
	case TypeDrawerContent, TypeDialog, TypePopup, TypeFAB, TypeBottomNavigation:
		return true
	default:
		return false
	}
}

type field int

const (
	fieldClass field = iota
	fieldResourceID
	fieldResourceName
	fieldContentDesc
	fieldPackage
)

type matchKind int

const (
	kindContains matchKind = iota
	kindEquals
	kindToken // one of the '_'/'-'/'.' separated tokens equals the pattern
)

// rule is one row of the classification table. Patterns are lowercase.
type rule struct {
	Type    SemanticType
	Field   field
	Kind    matchKind
	Pattern string
}

// classificationRules are evaluated in order; the first hit wins.
var classificationRules = []rule{
	{TypeSystemUI, fieldPackage, kindEquals, "com.android.systemui"},
	{TypeSystemUI, fieldResourceID, kindContains, "statusbarbackground"},
	{TypeSystemUI, fieldResourceID, kindContains, "navigationbarbackground"},

	{TypeDrawerLayout, fieldClass, kindContains, "drawerlayout"},

	{TypeDialog, fieldClass, kindContains, "dialog"},
	{TypeDialog, fieldResourceName, kindToken, "dialog"},
	{TypeDialog, fieldResourceName, kindEquals, "parentpanel"},
	{TypeDialog, fieldContentDesc, kindContains, "dialog"},

	{TypePopup, fieldClass, kindContains, "popupwindow"},
	{TypePopup, fieldClass, kindContains, "popupmenu"},
	{TypePopup, fieldClass, kindContains, "listpopup"},
	{TypePopup, fieldClass, kindContains, "dropdownlistview"},
	{TypePopup, fieldResourceName, kindToken, "popup"},

	{TypeFAB, fieldClass, kindContains, "floatingactionbutton"},
	{TypeFAB, fieldResourceName, kindToken, "fab"},

	{TypeBottomNavigation, fieldClass, kindContains, "bottomnavigation"},
	{TypeBottomNavigation, fieldClass, kindContains, "bottombar"},
	{TypeBottomNavigation, fieldClass, kindContains, "bottomappbar"},
	{TypeBottomNavigation, fieldResourceName, kindContains, "bottom_nav"},
	{TypeBottomNavigation, fieldResourceName, kindContains, "bottom_bar"},
	{TypeBottomNavigation, fieldResourceName, kindContains, "bottom_tab"},
	{TypeBottomNavigation, fieldResourceName, kindContains, "tab_bar"},
	{TypeBottomNavigation, fieldContentDesc, kindContains, "bottom navigation"},

	{TypeTopBar, fieldClass, kindContains, "toolbar"},
	{TypeTopBar, fieldClass, kindContains, "actionbar"},
	{TypeTopBar, fieldClass, kindContains, "appbarlayout"},
	{TypeTopBar, fieldResourceName, kindContains, "toolbar"},
	{TypeTopBar, fieldResourceName, kindContains, "action_bar"},
	{TypeTopBar, fieldResourceName, kindContains, "title_bar"},
	{TypeTopBar, fieldResourceName, kindContains, "titlebar"},
	{TypeTopBar, fieldResourceName, kindContains, "top_bar"},

	{TypeDrawerContent, fieldContentDesc, kindContains, "navigation drawer"},
}

func (r rule) matches(n *snapshot.Node) bool {
	var value string
	switch r.Field {
	case fieldClass:
		value = n.Class
	case fieldResourceID:
		value = n.ResourceID
	case fieldResourceName:
		value = n.ResourceName()
	case fieldContentDesc:
		value = n.ContentDesc
	case fieldPackage:
		value = n.Package
	}
	if value == "" {
		return false
	}
	value = strings.ToLower(value)

	switch r.Kind {
	case kindEquals:
		return value == r.Pattern
	case kindToken:
		for _, tok := range strings.FieldsFunc(value, isTokenSeparator) {
			if tok == r.Pattern {
				return true
			}
		}
		return false
	default:
		return strings.Contains(value, r.Pattern)
	}
}

func isTokenSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.'
}

// Classify assigns a semantic type from the node's own attributes only,
// using the fixed rule table. Context rules (drawer children, the
// bottom-navigation fallback) are applied by the Analyzer.
func Classify(n *snapshot.Node) SemanticType {
	if n == nil {
		return TypeNormal
	}
	for _, r := range classificationRules {
		if r.matches(n) {
			return r.Type
		}
	}
	return TypeNormal
}

// DefaultNavLabels are labels that commonly appear on bottom navigation tabs.
var DefaultNavLabels = []string{
	"home", "profile", "messages", "message", "me", "mine", "discover", "explore",
	"search", "settings", "inbox", "friends",
	"首页", "消息", "我的", "我", "发现", "通讯录", "朋友", "推荐", "购物车",
}
