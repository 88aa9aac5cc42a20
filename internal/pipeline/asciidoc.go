package pipeline

import (
	"iter"
	"os"
	"regexp"
	"strings"

	"github.com/fjglira/filecheck/internal/domain"
)

var (
	// [source,python] or [source,python,linenums]
	asciidocSourceRe = regexp.MustCompile(`^\[source(?:,\s*([^,\]]+))?(?:,.*)?\]\s*$`)
	// ---- opens and closes a listing block
	asciidocDelimRe = regexp.MustCompile(`^----+\s*$`)
)

// asciidocBlocksPreprocessor yields the content of every listing block of
// an AsciiDoc document. With language set, only blocks whose [source]
// attribute names that language are kept.
func asciidocBlocksPreprocessor(params Params) (Preprocessor, error) {
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

			for _, block := range listingBlocks(string(content), language) {
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

// listingBlocks collects ---- delimited blocks in document order. An
// unterminated block runs to the end of the document.
func listingBlocks(content, language string) []Chunk {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var blocks []Chunk
	blockLang := ""
	for i := 0; i < len(lines); i++ {
		if m := asciidocSourceRe.FindStringSubmatch(lines[i]); m != nil {
			blockLang = strings.TrimSpace(m[1])
			continue
		}
		if !asciidocDelimRe.MatchString(lines[i]) {
			if strings.TrimSpace(lines[i]) != "" {
				blockLang = ""
			}
			continue
		}

		first := i + 1
		i = first
		for i < len(lines) && !asciidocDelimRe.MatchString(lines[i]) {
			i++
		}
		if language == "" || blockLang == language {
			value := strings.Join(lines[first:min(i, len(lines))], "\n")
			if i >= len(lines) {
				value = strings.TrimRight(value, "\n")
			}
			blocks = append(blocks, Chunk{
				Location: domain.Span(first, max(first, i-1)),
				Value:    value,
			})
		}
		blockLang = ""
	}
	return blocks
}
