package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"z-lecture-ai-api/internal/infrastructure/embedding"
	"z-lecture-ai-api/internal/infrastructure/persistence/milvus"
	"z-lecture-ai-api/pkg/logger"
)

const (
	defaultChunkRunes   = 800
	defaultOverlapRunes = 100
	defaultTopK         = 6
	maxTopK             = 20
)

// Engine 参考资料检索引擎。
// embedder 或向量仓储缺失时引擎整体降级：索引报错，检索返回空结果。
type Engine struct {
	embedder *embedding.Client
	vector   *milvus.Repository

	chunkRunes   int
	overlapRunes int
}

func NewEngine(embedder *embedding.Client, vectorRepo *milvus.Repository) *Engine {
	return &Engine{
		embedder:     embedder,
		vector:       vectorRepo,
		chunkRunes:   defaultChunkRunes,
		overlapRunes: defaultOverlapRunes,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

// Index 切分、向量化并写入一份参考文档，返回分块数
func (e *Engine) Index(ctx context.Context, doc Document) (int, error) {
	if !e.Enabled() {
		return 0, ErrVectorDisabled
	}
	if strings.TrimSpace(doc.Content) == "" {
		return 0, fmt.Errorf("document content is empty")
	}
	if strings.TrimSpace(doc.ID) == "" {
		doc.ID = uuid.NewString()
	}

	if err := e.vector.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	// 重新索引前清掉旧分块
	if err := e.vector.DeleteByDocument(ctx, doc.ID); err != nil {
		logger.Warn(ctx, "failed to delete stale chunks before reindex", "error", err, "document_id", doc.ID)
	}

	texts := splitByRunes(doc.Content, e.chunkRunes, e.overlapRunes)
	if len(texts) == 0 {
		return 0, fmt.Errorf("document produced no chunks")
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}

	chunks := make([]*milvus.ReferenceChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &milvus.ReferenceChunk{
			ID:            fmt.Sprintf("%s-%d", doc.ID, i),
			Vector:        vectors[i],
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			ChunkIndex:    int64(i),
			TextContent:   text,
		})
	}
	if err := e.vector.InsertChunks(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Remove 删除一份参考文档的全部分块
func (e *Engine) Remove(ctx context.Context, documentID string) error {
	if !e.Enabled() {
		return ErrVectorDisabled
	}
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("document id is required")
	}
	if err := e.vector.EnsureCollection(ctx); err != nil {
		return err
	}
	return e.vector.DeleteByDocument(ctx, documentID)
}

// Search 语义检索参考资料；向量库不可用时返回空结果而非报错
func (e *Engine) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if in.TopK <= 0 {
		in.TopK = defaultTopK
	}
	if in.TopK > maxTopK {
		in.TopK = maxTopK
	}

	out := &SearchOutput{}
	if !e.Enabled() {
		out.DisabledReason = ErrVectorDisabled.Error()
		return out, nil
	}

	if err := e.vector.EnsureCollection(ctx); err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}

	vectors, err := e.embedder.Embed(ctx, []string{in.Query})
	if err != nil || len(vectors) == 0 {
		if err == nil {
			err = fmt.Errorf("empty embedding result")
		}
		out.DisabledReason = err.Error()
		return out, nil
	}

	results, err := e.vector.SearchChunks(ctx, &milvus.SearchParams{
		QueryVector: vectors[0],
		TopK:        in.TopK,
		DocumentIDs: in.DocumentIDs,
	})
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}

	out.Chunks = make([]Chunk, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Chunks = append(out.Chunks, Chunk{
			ID:            r.ID,
			Text:          strings.TrimSpace(r.TextContent),
			Score:         1 - float64(r.Score), // COSINE 距离转相似度
			DocumentID:    r.DocumentID,
			DocumentTitle: r.DocumentTitle,
		})
	}
	return out, nil
}

// FormatContext 把检索结果拼为提示词可用的上下文片段
func FormatContext(out *SearchOutput) string {
	if out == nil || len(out.Chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range out.Chunks {
		title := strings.TrimSpace(c.DocumentTitle)
		if title == "" {
			title = c.DocumentID
		}
		b.WriteString("[")
		b.WriteString(title)
		b.WriteString("] ")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
