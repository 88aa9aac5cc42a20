package pipeline

import (
	"bytes"
	"iter"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fjglira/filecheck/internal/domain"
)

// markdownBlocksPreprocessor yields the content of every fenced code block
// in a Markdown document, optionally only those of one language.
func markdownBlocksPreprocessor(params Params) (Preprocessor, error) {
	if err := params.Only("language", "processing_pipeline"); err != nil {
		return nil, err
	}
	language, err := params.String("language", "")
	if err != nil {
		return nil, err
	}
	pipe, err := pipelineParam(params)
	if err != nil {
		return nil, err
	}

	return func(path string) iter.Seq2[Chunk, error] {
		return func(yield func(Chunk, error) bool) {
			content, err := os.ReadFile(path)
			if err != nil {
				yield(Chunk{}, domain.NewError("preprocess", path, 0, "failed to read file", err))
				return
			}

			for _, block := range fencedBlocks(content, language) {
				v, err := pipe(block.Value)
				if err != nil {
					yield(Chunk{Location: block.Location},
						domain.NewError("preprocess", path, block.Location.Start+1, "processing_pipeline failed", err))
					return
				}
				if !yield(Chunk{Location: block.Location, Value: v}, nil) {
					return
				}
			}
		}
	}, nil
}

// fencedBlocks walks the goldmark AST and collects fenced code blocks in
// document order. An empty language matches every block.
func fencedBlocks(content []byte, language string) []Chunk {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	var blocks []Chunk
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		node, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if language != "" && string(node.Language(content)) != language {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		var loc domain.Location
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(content))
		}
		if lines.Len() > 0 {
			first, last := lines.At(0), lines.At(lines.Len()-1)
			loc = domain.Span(lineIndex(content, first.Start), lineIndex(content, last.Start))
		}
		blocks = append(blocks, Chunk{
			Location: loc,
			Value:    strings.TrimRight(buf.String(), "\n"),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// lineIndex calculates the 0-based line number for a byte offset.
func lineIndex(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n"))
}
