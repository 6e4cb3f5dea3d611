package textmatch

// BuiltinAntonymPairs are the common state-toggle confusions.
var BuiltinAntonymPairs = []AntonymPair{
	{Positive: "关注", Negative: "已关注", Description: "follow state"},
	{Positive: "关注", Negative: "取消关注", Description: "follow action"},
	{Positive: "登录", Negative: "已登录", Description: "login state"},
	{Positive: "登录", Negative: "退出登录", Description: "login action"},
	{Positive: "连接", Negative: "已连接", Description: "connection state"},
	{Positive: "连接", Negative: "断开连接", Description: "connection action"},
	{Positive: "开启", Negative: "已开启", Description: "on state"},
	{Positive: "开启", Negative: "关闭", Description: "switch action"},
	{Positive: "启用", Negative: "已启用", Description: "enabled state"},
	{Positive: "启用", Negative: "禁用", Description: "enable action"},
	{Positive: "同意", Negative: "已同意", Description: "agree state"},
	{Positive: "同意", Negative: "拒绝", Description: "agree action"},
	{Positive: "订阅", Negative: "已订阅", Description: "subscribe state"},
	{Positive: "订阅", Negative: "取消订阅", Description: "subscribe action"},
	{Positive: "收藏", Negative: "已收藏", Description: "favorite state"},
	{Positive: "收藏", Negative: "取消收藏", Description: "favorite action"},
	{Positive: "喜欢", Negative: "已喜欢", Description: "like state"},
	{Positive: "喜欢", Negative: "取消喜欢", Description: "like action"},
	{Positive: "添加", Negative: "已添加", Description: "add state"},
	{Positive: "删除", Negative: "已删除", Description: "delete state"},
	{Positive: "完成", Negative: "未完成", Description: "done state"},
	{Positive: "发送", Negative: "已发送", Description: "send state"},
	{Positive: "follow", Negative: "unfollow"},
	{Positive: "follow", Negative: "following"},
	{Positive: "subscribe", Negative: "unsubscribe"},
	{Positive: "subscribe", Negative: "subscribed"},
	{Positive: "like", Negative: "unlike"},
	{Positive: "log in", Negative: "log out"},
	{Positive: "login", Negative: "logout"},
	{Positive: "sign in", Negative: "sign out"},
	{Positive: "connect", Negative: "disconnect"},
	{Positive: "enable", Negative: "disable"},
	{Positive: "on", Negative: "off"},
	{Positive: "show", Negative: "hide"},
	{Positive: "mute", Negative: "unmute"},
}

// genericNegationPrefixes turn a plain label X into its toggled state,
// e.g. "已关注" for "关注".
var genericNegationPrefixes = []string{"已", "取消", "未"}

// actionPrefixes are stripped from a label before the generic patterns apply.
var actionPrefixes = []string{"点击", "选择", "按", "tap ", "click "}

// SynonymGroups hold terms that name the same action.
var SynonymGroups = [][]string{
	{"确定", "确认", "好的", "ok", "okay", "confirm", "yes"},
	{"取消", "cancel", "算了"},
	{"搜索", "查找", "search", "find"},
	{"设置", "设定", "settings", "preferences", "options"},
	{"登录", "登陆", "sign in", "log in", "login"},
	{"注册", "sign up", "register"},
	{"下一步", "继续", "next", "continue"},
	{"完成", "done", "finish"},
	{"删除", "移除", "delete", "remove"},
	{"发送", "提交", "send", "submit"},
	{"编辑", "修改", "edit", "modify"},
	{"分享", "转发", "share", "forward"},
	{"返回", "后退", "back"},
	{"保存", "存储", "save"},
	{"消息", "信息", "messages", "inbox"},
	{"首页", "主页", "home"},
	{"个人中心", "我的", "profile", "account"},
}
