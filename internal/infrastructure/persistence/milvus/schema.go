package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionReferenceChunks 参考资料分块集合
	CollectionReferenceChunks = "reference_chunks"

	// VectorDimension 向量维度
	VectorDimension = 1024
)

// ReferenceChunksSchema 参考资料分块 Collection Schema
func ReferenceChunksSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionReferenceChunks,
		Description:    "Reference material chunks for semantic retrieval",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1024",
				},
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "document_title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// ReferenceChunk 参考资料分块数据结构
type ReferenceChunk struct {
	ID            string    `json:"id"`
	Vector        []float32 `json:"vector"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	ChunkIndex    int64     `json:"chunk_index"`
	TextContent   string    `json:"text_content"`
}
