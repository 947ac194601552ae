package app

import (
	"fmt"
	"strings"

	"ragdocs/internal/model"
)

// Citation points an answer back at the chunk and page range that
// supported it. Built fresh per query, never persisted.
type Citation struct {
	ChunkID       uint   `json:"chunk_id"`
	DocumentTitle string `json:"document_title"`
	PageStart     int    `json:"page_start"`
	PageEnd       int    `json:"page_end"`
}

// assembleContext renders the ranked chunks into one labelled context block
// and a parallel citation list in the same order. Same input, same output;
// any prompt-size truncation is the answer generator's concern, the
// retriever's k already bounds what arrives here.
func assembleContext(chunks []model.Chunk, titles map[uint]string) (string, []Citation) {
	var b strings.Builder
	citations := make([]Citation, 0, len(chunks))

	for i, chunk := range chunks {
		title, ok := titles[chunk.DocumentID]
		if !ok || title == "" {
			title = "Unknown Document"
		}
		fmt.Fprintf(&b, "--- Source %d: %s (Pages %d-%d) ---\n", i+1, title, chunk.PageStart, chunk.PageEnd)
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")

		citations = append(citations, Citation{
			ChunkID:       chunk.ID,
			DocumentTitle: title,
			PageStart:     chunk.PageStart,
			PageEnd:       chunk.PageEnd,
		})
	}

	return b.String(), citations
}
