package embedclient

import (
	"encoding/json"
	"fmt"

	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// decodeEmbeddingResponse decodes raw as a tagged variant: probe the known
// response shapes in a fixed order rather than collapsing into an untyped
// map at the call site (spec.md §9, "Dynamic embedding response shapes").
//
// Recognized shapes, probed in this order:
//
//	(a) an object with exactly one key whose value is [[float, ...], ...] —
//	    take the first row (Cohere embed-v3-style response).
//	(b) {"embeddings": {"float": [[float, ...], ...]}} — take the first row
//	    (Cohere embed-v4-style response, which can carry multiple encodings).
//	(c) anything else fails with ragerr.EmbeddingShapeError.
func decodeEmbeddingResponse(raw []byte) ([]float64, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("embedclient: decode response: %w: %w", ragerr.EmbeddingShapeError, err)
	}

	if len(root) == 1 {
		for _, v := range root {
			if rows, ok := asFloatMatrix(v); ok && len(rows) > 0 {
				return rows[0], nil
			}
		}
	}

	if embeddings, ok := root["embeddings"].(map[string]interface{}); ok {
		if rows, ok := asFloatMatrix(embeddings["float"]); ok && len(rows) > 0 {
			return rows[0], nil
		}
	}

	return nil, fmt.Errorf("embedclient: unrecognized embedding response shape: %w", ragerr.EmbeddingShapeError)
}

// asFloatMatrix type-asserts v as a [][]float64 decoded from arbitrary JSON
// interface{} values (json.Unmarshal into interface{} always produces
// []interface{} of []interface{} of float64 for a nested numeric array).
func asFloatMatrix(v interface{}) ([][]float64, bool) {
	outer, ok := v.([]interface{})
	if !ok {
		return nil, false
	}

	rows := make([][]float64, 0, len(outer))
	for _, rowVal := range outer {
		inner, ok := rowVal.([]interface{})
		if !ok {
			return nil, false
		}
		row := make([]float64, 0, len(inner))
		for _, n := range inner {
			f, ok := n.(float64)
			if !ok {
				return nil, false
			}
			row = append(row, f)
		}
		rows = append(rows, row)
	}
	return rows, true
}
