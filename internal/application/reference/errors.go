package reference

import "errors"

// ErrVectorDisabled 向量检索未启用或不可用
var ErrVectorDisabled = errors.New("vector retrieval is disabled")
