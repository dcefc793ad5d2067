package scriptid

import "strings"

// Variant identifies the Chinese writing variant of a subtitle.
type Variant string

const (
	VariantSimplified  Variant = "simplified"
	VariantTraditional Variant = "traditional"
	VariantUnknown     Variant = "unknown"
)

// Characters whose simplified and traditional forms differ. Shared
// characters (的, 人, 大, ...) carry no signal and are deliberately absent.
const (
	traditionalOnly = "這個國強說話時間東門問題點鐘愛樂學習書畫馬鳥魚車見貝頁風飛龍廣嚴氣處產發號經給結絲網綠紅約級紙務動勞勢圓團圖場壓夢頭顏體傳價優億們來備連週遠運還邊進過達對導將專廳廟廠歲歷"
	simplifiedOnly  = "这个国强说话时间东门问题点钟爱乐学习书画马鸟鱼车见贝页风飞龙广严气处产发号经给结丝网绿红约级纸务动劳势圆团图场压梦头颜体传价优亿们来备连周远运还边进过达对导将专厅庙厂岁历"
)

var (
	traditionalSet = runeSet(traditionalOnly)
	simplifiedSet  = runeSet(simplifiedOnly)
)

func runeSet(chars string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(chars)/3)
	for _, r := range chars {
		set[r] = struct{}{}
	}
	return set
}

// DetectVariant classifies Chinese text by counting distinct
// variant-exclusive characters. Text containing kana is Japanese, not a
// Chinese variant, and reports unknown. Either variant needs at least two
// distinct exclusive characters: a lone one is too often a stylized or
// quoted form from the other variant, and repeating it adds no evidence.
func DetectVariant(text string) Variant {
	stats := Analyze(text)
	if stats.HasKana() {
		return VariantUnknown
	}
	traditional := make(map[rune]struct{})
	simplified := make(map[rune]struct{})
	for _, r := range text {
		if _, ok := traditionalSet[r]; ok {
			traditional[r] = struct{}{}
		}
		if _, ok := simplifiedSet[r]; ok {
			simplified[r] = struct{}{}
		}
	}
	switch {
	case len(simplified) >= 2 && len(simplified) >= len(traditional):
		return VariantSimplified
	case len(traditional) >= 2 && len(traditional) > len(simplified):
		return VariantTraditional
	default:
		return VariantUnknown
	}
}

// Label fragments that announce a variant. Traditional markers are checked
// first since "中文繁体" also contains the generic "中文".
var (
	traditionalLabelHints = []string{"cht", "繁体", "繁體", "big5", "zh-tw", "zh-hk", "zh-hant", "traditional"}
	simplifiedLabelHints  = []string{"chs", "简体", "簡体", "gb2312", "gbk", "zh-cn", "zh-hans", "simplified", "chinese", "中文", "zh", "chi"}
)

// DescribeVariant combines a track label with the text itself. Kana in the
// text wins outright (a "chs"-labelled track holding Japanese is unknown),
// then variant-exclusive characters, then the label. Bare Chinese labels
// such as "zh" or "CHS" default to simplified.
func DescribeVariant(label, text string) Variant {
	if strings.TrimSpace(text) != "" {
		stats := Analyze(text)
		if stats.HasKana() {
			return VariantUnknown
		}
		if v := DetectVariant(text); v != VariantUnknown {
			return v
		}
	}
	lowered := strings.ToLower(label)
	for _, hint := range traditionalLabelHints {
		if strings.Contains(lowered, hint) {
			return VariantTraditional
		}
	}
	for _, hint := range simplifiedLabelHints {
		if strings.Contains(lowered, hint) {
			return VariantSimplified
		}
	}
	return VariantUnknown
}
