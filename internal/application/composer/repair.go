package composer

import (
	"html"
	"strings"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/workflow/node"
)

// 修复阶梯各级标识，用于指标与日志
const (
	repairRungNone          = "none"
	repairRungFenceStrip    = "fence_strip"
	repairRungExtractBlock  = "extract_block"
	repairRungDefensiveWrap = "defensive_wrap"
)

// repairResult 修复阶梯的产出
type repairResult struct {
	HTML string
	// Rung 命中的修复等级
	Rung string
	// Wrapped 内容经过防御性包装
	Wrapped bool
	// OK false 表示所有修复等级都救不回来
	OK bool
}

// repairSlideHTML 对模型原始输出逐级尝试修复：
// 先剥离代码围栏，再截取首个 <section> 块；两者都失败但裸文本
// 足够长时做无损防御性包装；否则判为不可修复。
func repairSlideHTML(raw string, section *entity.OutlineSection, wrapThresholdChars int) repairResult {
	stripped := node.StripCodeFence(raw)
	fenced := stripped != raw

	if block, ok := node.ExtractSectionBlock(stripped); ok {
		rung := repairRungNone
		switch {
		case strings.TrimSpace(stripped) != block:
			rung = repairRungExtractBlock
		case fenced:
			rung = repairRungFenceStrip
		}
		return repairResult{HTML: block, Rung: rung, OK: true}
	}

	// 没有结构化块：裸文本够长才值得包装，太短多半是拒答或报错文本
	text := strings.TrimSpace(stripped)
	if len([]rune(text)) >= wrapThresholdChars {
		return repairResult{
			HTML:    wrapRawContent(text, section),
			Rung:    repairRungDefensiveWrap,
			Wrapped: true,
			OK:      true,
		}
	}

	return repairResult{OK: false}
}

// wrapRawContent 无损包装裸文本：原始内容逐字节保留在转义后的正文中
func wrapRawContent(text string, section *entity.OutlineSection) string {
	var b strings.Builder
	b.WriteString(`<section class="slide" data-kind="`)
	b.WriteString(string(section.Kind))
	b.WriteString(`" data-repaired="true">`)
	b.WriteString("\n<h2>")
	b.WriteString(html.EscapeString(section.Title))
	b.WriteString("</h2>\n<pre class=\"raw-content\">")
	b.WriteString(html.EscapeString(text))
	b.WriteString("</pre>\n</section>")
	return b.String()
}
