// Package node 提供工作流节点级的文本容错处理
package node

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

// fencePattern 匹配 Markdown 代码围栏的起始行（``` 或 ```html 等）
var fencePattern = regexp.MustCompile("(?m)^```[a-zA-Z0-9_-]*[ \t]*$")

// StripCodeFence 去除包裹全文的一层 Markdown 代码围栏。
// 只在首尾都是围栏行时剥离，围栏内内容按字节原样返回；
// 不满足包裹条件时原样返回输入。
func StripCodeFence(s string) string {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "```") {
		return s
	}

	lines := strings.SplitAfter(raw, "\n")
	if len(lines) < 2 {
		return s
	}
	first := strings.TrimRight(lines[0], "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if !fencePattern.MatchString(first) || last != "```" {
		return s
	}

	inner := strings.Join(lines[1:len(lines)-1], "")
	// 去掉紧贴结尾围栏的换行符，其余内容保持逐字节一致
	inner = strings.TrimSuffix(inner, "\n")
	return inner
}

// ExtractJSONObject 尝试从模型输出中截取“第一个完整 JSON 对象/数组”。
// 这是一个容错逻辑：模型可能会在 JSON 前后夹杂多余文本。
func ExtractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start := -1
	end := -1
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start = objStart
		end = strings.LastIndex(raw, "}")
	case arrStart >= 0:
		start = arrStart
		end = strings.LastIndex(raw, "]")
	}
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	// 校验截取结果至少以 JSON 起始符开头
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err == nil {
		if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
			return raw
		}
	}

	// 兜底：消费到 EOF 确认可解析，否则返回原始文本
	dec = json.NewDecoder(strings.NewReader(raw))
	for {
		_, e := dec.Token()
		if e != nil {
			if errors.Is(e, io.EOF) {
				break
			}
			return strings.TrimSpace(s)
		}
	}
	return raw
}

// ExtractSectionBlock 从模型输出中截取第一个完整的 <section> 内容块。
// 按开闭标签深度配对扫描，内层嵌套的 <section> 不会截断外层块；
// 找不到配平的块时返回 ("", false)。
func ExtractSectionBlock(s string) (string, bool) {
	lower := strings.ToLower(s)
	start := -1
	depth := 0
	for i := 0; i < len(lower); {
		switch {
		case tagTokenAt(lower, i, "<section"):
			if start < 0 {
				start = i
			}
			depth++
			i += len("<section")
		case start >= 0 && tagTokenAt(lower, i, "</section"):
			gt := strings.IndexByte(lower[i:], '>')
			if gt < 0 {
				return "", false
			}
			i += gt + 1
			depth--
			if depth == 0 {
				return s[start:i], true
			}
		default:
			i++
		}
	}
	return "", false
}

// tagTokenAt 判断 lower[i:] 处是否为 tok 标签本体，
// 后随字符必须是标签边界（避免把 <sectionx> 误认为 <section>）
func tagTokenAt(lower string, i int, tok string) bool {
	if !strings.HasPrefix(lower[i:], tok) {
		return false
	}
	j := i + len(tok)
	if j >= len(lower) {
		return false
	}
	switch lower[j] {
	case '>', ' ', '\t', '\n', '\r', '/':
		return true
	}
	return false
}
