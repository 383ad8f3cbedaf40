// Package chain 封装对 Eino ChatModel 的链式调用
package chain

import (
	"fmt"
	"strings"

	wfmodel "z-lecture-ai-api/internal/workflow/model"
)

// formatAttachments 拼接附件文本，空附件列表返回占位说明
func formatAttachments(attachments []wfmodel.TextAttachment) string {
	if len(attachments) == 0 {
		return "(none provided)"
	}
	var b strings.Builder
	for i, a := range attachments {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i+1)
		}
		b.WriteString("--- ")
		b.WriteString(name)
		b.WriteString(" ---\n")
		b.WriteString(strings.TrimSpace(a.Content))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func formatAudience(level, specialty string) string {
	level = strings.TrimSpace(level)
	specialty = strings.TrimSpace(specialty)
	switch {
	case level == "" && specialty == "":
		return "general medical audience"
	case specialty == "":
		return level
	case level == "":
		return specialty
	default:
		return level + ", " + specialty
	}
}

func orPlaceholder(s, placeholder string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return placeholder
	}
	return s
}
