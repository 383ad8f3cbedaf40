package composer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"z-lecture-ai-api/internal/domain/entity"
)

// Assembler 把有序的幻灯片装配为自包含 HTML 课件。
// 纯函数式组件：相同输入总是产出相同文档。
type Assembler struct {
	minDeckBytes int
}

func NewAssembler(minDeckBytes int) *Assembler {
	if minDeckBytes <= 0 {
		minDeckBytes = 2048
	}
	return &Assembler{minDeckBytes: minDeckBytes}
}

// Assemble 校验并装配课件。幻灯片必须恰好覆盖大纲的每一节。
func (a *Assembler) Assemble(outline *entity.LectureOutline, slides []entity.Slide, jobID, deckID, theme string) (*entity.Deck, error) {
	if outline == nil {
		return nil, &AssemblyError{Reason: "outline is nil"}
	}
	if len(slides) != len(outline.Sections) {
		return nil, &AssemblyError{Reason: fmt.Sprintf("slide count %d does not match section count %d", len(slides), len(outline.Sections))}
	}

	for i := range slides {
		s := &slides[i]
		if s.SectionID != outline.Sections[i].ID {
			return nil, &AssemblyError{Reason: fmt.Sprintf("slide order broken: got section %d at position %d, want %d", s.SectionID, i, outline.Sections[i].ID)}
		}
		if s.ContentChars() == 0 {
			return nil, &AssemblyError{Reason: fmt.Sprintf("slide for section %d is empty", s.SectionID)}
		}
	}

	if theme == "" {
		theme = "default"
	}

	nav := make([]entity.NavEntry, 0, len(slides))
	for i := range slides {
		label := strings.TrimSpace(slides[i].Title)
		if label == "" {
			label = fmt.Sprintf("Slide %d", i+1)
		}
		nav = append(nav, entity.NavEntry{
			SectionID: slides[i].SectionID,
			Position:  i,
			Label:     label,
		})
	}

	doc := renderDeckHTML(outline, slides, nav, theme)
	if len(doc) < a.minDeckBytes {
		return nil, &AssemblyError{Reason: fmt.Sprintf("assembled document is %d bytes, below minimum %d", len(doc), a.minDeckBytes)}
	}
	if !strings.HasPrefix(doc, "<!DOCTYPE html>") || !strings.HasSuffix(strings.TrimSpace(doc), "</html>") {
		return nil, &AssemblyError{Reason: "assembled document is not a complete html document"}
	}

	return &entity.Deck{
		ID:          deckID,
		JobID:       jobID,
		Title:       outline.Title,
		Description: outline.Description,
		Slides:      slides,
		Nav:         nav,
		HTML:        doc,
		Theme:       theme,
		CreatedAt:   time.Now(),
	}, nil
}

// renderDeckHTML 渲染完整文档：导航索引、幻灯片序列和翻页控制器
func renderDeckHTML(outline *entity.LectureOutline, slides []entity.Slide, nav []entity.NavEntry, theme string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(outline.Title))
	b.WriteString("</title>\n")
	b.WriteString(deckStyles)
	b.WriteString("</head>\n<body data-theme=\"")
	b.WriteString(html.EscapeString(theme))
	b.WriteString("\">\n")

	b.WriteString("<nav class=\"deck-nav\">\n<ol>\n")
	for _, n := range nav {
		fmt.Fprintf(&b, "<li><a href=\"#\" data-slide=\"%d\">%s</a></li>\n", n.Position, html.EscapeString(n.Label))
	}
	b.WriteString("</ol>\n</nav>\n")

	b.WriteString("<main class=\"deck\">\n")
	for i := range slides {
		b.WriteString(slides[i].HTML)
		b.WriteString("\n")
	}
	b.WriteString("</main>\n")

	b.WriteString(deckController)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

const deckStyles = `<style>
:root { --slide-bg: #ffffff; --slide-fg: #1a212b; --accent: #2563eb; }
body[data-theme="dark"] { --slide-bg: #10161f; --slide-fg: #e7edf5; --accent: #60a5fa; }
body { margin: 0; font-family: "Segoe UI", sans-serif; background: var(--slide-bg); color: var(--slide-fg); }
.deck-nav { position: fixed; top: 0; left: 0; width: 220px; height: 100vh; overflow-y: auto; padding: 1rem; box-sizing: border-box; border-right: 1px solid rgba(128,128,128,.3); font-size: .85rem; }
.deck-nav a { color: var(--accent); text-decoration: none; }
.deck-nav li.active a { font-weight: 700; }
.deck { margin-left: 240px; padding: 2rem; }
.deck section.slide { display: none; min-height: 80vh; max-width: 960px; }
.deck section.slide.active { display: block; }
.deck section.slide h2 { color: var(--accent); }
.deck pre.raw-content { white-space: pre-wrap; }
</style>
`

const deckController = `<script>
(function () {
  var slides = document.querySelectorAll(".deck section.slide");
  var links = document.querySelectorAll(".deck-nav a[data-slide]");
  var current = 0;
  function show(i) {
    if (i < 0 || i >= slides.length) return;
    slides[current].classList.remove("active");
    if (links[current]) links[current].parentElement.classList.remove("active");
    current = i;
    slides[current].classList.add("active");
    if (links[current]) links[current].parentElement.classList.add("active");
  }
  links.forEach(function (a) {
    a.addEventListener("click", function (e) {
      e.preventDefault();
      show(parseInt(a.getAttribute("data-slide"), 10));
    });
  });
  document.addEventListener("keydown", function (e) {
    if (e.key === "ArrowRight" || e.key === "PageDown") show(current + 1);
    if (e.key === "ArrowLeft" || e.key === "PageUp") show(current - 1);
  });
  if (slides.length > 0) { slides[0].classList.add("active"); if (links[0]) links[0].parentElement.classList.add("active"); }
})();
</script>
`
