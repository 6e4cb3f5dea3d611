package actionable

import (
	"strings"

	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
)

// ElementType is the widget role assigned to an actionable child.
type ElementType string

// Element types
const (
	TypeTextButton     ElementType = "text_button"
	TypeButton         ElementType = "button"
	TypeInput          ElementType = "input"
	TypeCheckbox       ElementType = "checkbox"
	TypeSwitch         ElementType = "switch"
	TypeImageButton    ElementType = "image_button"
	TypeListItem       ElementType = "list_item"
	TypeTab            ElementType = "tab"
	TypeLink           ElementType = "link"
	TypeClickableText  ElementType = "clickable_text"
	TypeOtherClickable ElementType = "other_clickable"
)

// baseScores seed the confidence of each type.
var baseScores = map[ElementType]float64{
	TypeTextButton:     0.85,
	TypeButton:         0.8,
	TypeInput:          0.75,
	TypeCheckbox:       0.7,
	TypeSwitch:         0.7,
	TypeImageButton:    0.7,
	TypeTab:            0.65,
	TypeListItem:       0.6,
	TypeLink:           0.6,
	TypeClickableText:  0.5,
	TypeOtherClickable: 0.4,
}

// typeWeights add to the ordering priority of each type.
var typeWeights = map[ElementType]int{
	TypeTextButton:     30,
	TypeButton:         25,
	TypeImageButton:    20,
	TypeInput:          18,
	TypeCheckbox:       15,
	TypeSwitch:         15,
	TypeTab:            12,
	TypeLink:           10,
	TypeListItem:       8,
	TypeClickableText:  5,
	TypeOtherClickable: 0,
}

// BaseScore returns the confidence seed for t.
func BaseScore(t ElementType) float64 {
	if s, ok := baseScores[t]; ok {
		return s
	}
	return baseScores[TypeOtherClickable]
}

// TypeWeight returns the priority weight for t.
func TypeWeight(t ElementType) int {
	return typeWeights[t]
}

// interactiveClasses mark a node actionable regardless of its clickable flag.
var interactiveClasses = []string{
	"button", "edittext", "checkbox", "switch", "imagebutton",
	"spinner", "seekbar", "slider", "toggle", "radio",
}

// IsActionable reports whether n is clickable or an interactive widget.
func IsActionable(n *snapshot.Node) bool {
	if n == nil {
		return false
	}
	if n.Clickable {
		return true
	}
	class := strings.ToLower(n.Class)
	for _, c := range interactiveClasses {
		if strings.Contains(class, c) {
			return true
		}
	}
	return false
}

// typeRule assigns typ when match holds. Rules run in order; the first
// match wins.
type typeRule struct {
	typ   ElementType
	match func(f features) bool
}

// features are the lowercased attributes the rules inspect.
type features struct {
	class     string
	idTokens  []string
	hasLabel  bool
	clickable bool
}

func featuresOf(n *snapshot.Node) features {
	return features{
		class:     strings.ToLower(n.Class),
		idTokens:  tokens(strings.ToLower(n.ResourceName())),
		hasLabel:  n.Label() != "",
		clickable: n.Clickable,
	}
}

// tokens splits a lowercase identifier such as "btn_tab_home" into words.
func tokens(id string) []string {
	return strings.FieldsFunc(id, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func classHas(f features, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(f.class, s) {
			return true
		}
	}
	return false
}

func idHas(f features, words ...string) bool {
	for _, t := range f.idTokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

var typeRules = []typeRule{
	{TypeInput, func(f features) bool {
		return classHas(f, "edittext", "autocomplete", "spinner", "seekbar", "slider")
	}},
	{TypeCheckbox, func(f features) bool { return classHas(f, "checkbox", "radiobutton") }},
	{TypeSwitch, func(f features) bool { return classHas(f, "switch", "togglebutton") }},
	{TypeImageButton, func(f features) bool { return classHas(f, "imagebutton") }},
	{TypeTextButton, func(f features) bool { return classHas(f, "button") && f.hasLabel }},
	{TypeButton, func(f features) bool { return classHas(f, "button") }},
	{TypeTab, func(f features) bool { return idHas(f, "tab", "tabs") || classHas(f, "tabview", "$tab") }},
	{TypeLink, func(f features) bool { return idHas(f, "link", "url") || classHas(f, "link") }},
	{TypeListItem, func(f features) bool { return idHas(f, "item", "cell", "row") }},
	{TypeClickableText, func(f features) bool { return classHas(f, "textview") && f.clickable }},
}

// Classify assigns the element type of n.
func Classify(n *snapshot.Node) ElementType {
	if n == nil {
		return TypeOtherClickable
	}
	f := featuresOf(n)
	for _, r := range typeRules {
		if r.match(f) {
			return r.typ
		}
	}
	return TypeOtherClickable
}

// Action word tiers. Entries are matched as whole words for Latin text
// and as substrings for CJK text.
var (
	highPriorityWords = []string{
		"submit", "confirm", "ok", "save", "send", "done", "continue", "next",
		"login", "log in", "sign in", "sign up", "register", "buy", "pay",
		"add", "follow", "apply", "search",
		"确定", "确认", "提交", "保存", "发送", "完成", "继续", "下一步",
		"登录", "注册", "购买", "支付", "添加", "关注", "搜索",
	}
	mediumPriorityWords = []string{
		"view", "open", "more", "details", "expand", "show", "edit", "share", "play",
		"查看", "打开", "更多", "详情", "展开", "编辑", "分享", "播放",
	}
	lowPriorityWords = []string{
		"cancel", "skip", "close", "dismiss", "later", "back", "no thanks", "not now",
		"取消", "跳过", "关闭", "稍后", "返回", "暂不",
	}
)
