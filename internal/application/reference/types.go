// Package reference 提供参考资料的索引与语义检索
package reference

// Document 待索引的参考文档
type Document struct {
	ID      string
	Title   string
	Content string
}

// SearchInput 检索输入
type SearchInput struct {
	Query string
	TopK  int

	// DocumentIDs 非空时只在指定文档内检索
	DocumentIDs []string
}

// Chunk 检索命中的分块
type Chunk struct {
	ID            string
	Text          string
	Score         float64
	DocumentID    string
	DocumentTitle string
}

// SearchOutput 检索输出。
// 向量库不可用时 Chunks 为空且 DisabledReason 说明原因，调用方按无参考资料继续。
type SearchOutput struct {
	Chunks         []Chunk
	DisabledReason string
}
