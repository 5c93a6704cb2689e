// Package label implements the cheap keyword risk classifier. It is the
// always-available fallback signal behind the LLM evaluator and the tag
// shown next to every event.
package label

import "strings"

// Keyword tables cover Taiwan-market news vocabulary plus the English terms
// syndicated feeds use. Negative match takes precedence over positive.
var negativeKeywords = []string{
	// zh-TW
	"下跌", "重挫", "大跌", "暴跌", "跌停", "虧損", "利空", "裁員",
	"衰退", "下修", "警示", "處分", "罰款", "停工", "召回", "違約",
	"訴訟", "減產", "砍單", "跳水", "崩", "降評",
	// en
	"drop", "fall", "plunge", "slump", "loss", "losses", "cut", "cuts",
	"layoff", "lawsuit", "recall", "fraud", "downgrade", "miss",
	"decline", "warning", "halt", "default", "probe", "fine",
}

var positiveKeywords = []string{
	// zh-TW
	"上漲", "大漲", "漲停", "創高", "新高", "成長", "獲利", "利多",
	"擴產", "急單", "回升", "轉盈", "看好", "調升", "增持", "買回",
	"配息", "填息", "報喜", "升評",
	// en
	"surge", "rally", "jump", "gain", "gains", "beat", "beats",
	"growth", "record", "upgrade", "buyback", "dividend", "expand",
	"expansion", "profit", "win", "wins", "soar", "strong",
}

type matcher struct {
	keywords []string
}

// Precompiled matchers: keywords are lowercased once at init so Label
// only pays for the scan.
var (
	negative = newMatcher(negativeKeywords)
	positive = newMatcher(positiveKeywords)
)

func newMatcher(keywords []string) *matcher {
	m := &matcher{keywords: make([]string, len(keywords))}
	for i, kw := range keywords {
		m.keywords[i] = strings.ToLower(kw)
	}
	return m
}

func (m *matcher) matches(lowered string) bool {
	for _, kw := range m.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Tag is the label result
type Tag string

const (
	Negative Tag = "negative"
	Positive Tag = "positive"
	Neutral  Tag = "neutral"
)

// Label classifies text into negative/positive/neutral. Deterministic and
// stateless; negative beats positive when both match.
func Label(text string) Tag {
	lowered := strings.ToLower(text)
	if negative.matches(lowered) {
		return Negative
	}
	if positive.matches(lowered) {
		return Positive
	}
	return Neutral
}
