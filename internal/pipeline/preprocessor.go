package pipeline

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"regexp"
	"strings"

	"github.com/fjglira/filecheck/internal/domain"
)

const maxLineSize = 16 * 1024 * 1024

// linesPreprocessor yields one chunk per line. The first in_skip lines are
// dropped, lines failing start_pred are skipped, and the first line
// matching stop_pred ends the sequence. Locations are 0-indexed line numbers
// that still count skipped lines.
func linesPreprocessor(params Params) (Preprocessor, error) {
	if err := params.Only("processing_pipeline", "in_skip", "start_pred", "stop_pred"); err != nil {
		return nil, err
	}
	pipe, err := pipelineParam(params)
	if err != nil {
		return nil, err
	}
	inSkip, err := params.Int("in_skip", 0)
	if err != nil {
		return nil, err
	}
	if inSkip < 0 {
		return nil, fmt.Errorf("parameter \"in_skip\" must be non-negative, got %d", inSkip)
	}
	start, err := ParsePredicate(params["start_pred"], true)
	if err != nil {
		return nil, fmt.Errorf("start_pred: %w", err)
	}
	stop, err := ParsePredicate(params["stop_pred"], false)
	if err != nil {
		return nil, fmt.Errorf("stop_pred: %w", err)
	}

	return func(path string) iter.Seq2[Chunk, error] {
		return func(yield func(Chunk, error) bool) {
			f, err := os.Open(path)
			if err != nil {
				yield(Chunk{}, domain.NewError("preprocess", path, 0, "failed to open file", err))
				return
			}
			defer f.Close()

			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 64*1024), maxLineSize)
			for n := 0; sc.Scan(); n++ {
				if n < inSkip {
					continue
				}
				line := sc.Text()
				loc := domain.Line(n)

				ok, err := start(line)
				if err != nil {
					yield(Chunk{Location: loc}, domain.NewError("preprocess", path, n+1, "start_pred failed", err))
					return
				}
				if !ok {
					continue
				}
				done, err := stop(line)
				if err != nil {
					yield(Chunk{Location: loc}, domain.NewError("preprocess", path, n+1, "stop_pred failed", err))
					return
				}
				if done {
					return
				}
				v, err := pipe(line)
				if err != nil {
					yield(Chunk{Location: loc}, domain.NewError("preprocess", path, n+1, "processing_pipeline failed", err))
					return
				}
				if !yield(Chunk{Location: loc, Value: v}, nil) {
					return
				}
			}
			if err := sc.Err(); err != nil {
				yield(Chunk{}, domain.NewError("preprocess", path, 0, "failed to read file", err))
			}
		}
	}, nil
}

// blocksPreprocessor yields the text between lines matching start_pattern
// and end_pattern. Marker lines are excluded; an unterminated block runs to
// the end of the file.
func blocksPreprocessor(params Params) (Preprocessor, error) {
	if err := params.Only("start_pattern", "end_pattern", "processing_pipeline"); err != nil {
		return nil, err
	}
	startRe, err := patternParam(params, "start_pattern")
	if err != nil {
		return nil, err
	}
	endRe, err := patternParam(params, "end_pattern")
	if err != nil {
		return nil, err
	}
	pipe, err := pipelineParam(params)
	if err != nil {
		return nil, err
	}

	return func(path string) iter.Seq2[Chunk, error] {
		return func(yield func(Chunk, error) bool) {
			f, err := os.Open(path)
			if err != nil {
				yield(Chunk{}, domain.NewError("preprocess", path, 0, "failed to open file", err))
				return
			}
			defer f.Close()

			var (
				inBlock bool
				first   int
				content []string
			)
			emit := func(last int) bool {
				loc := domain.Span(first, max(first, last))
				v, err := pipe(strings.Join(content, "\n"))
				if err != nil {
					yield(Chunk{Location: loc}, domain.NewError("preprocess", path, first+1, "processing_pipeline failed", err))
					return false
				}
				return yield(Chunk{Location: loc, Value: v}, nil)
			}

			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 64*1024), maxLineSize)
			n := 0
			for ; sc.Scan(); n++ {
				line := sc.Text()
				switch {
				case !inBlock && startRe.MatchString(line):
					inBlock, first, content = true, n+1, nil
				case inBlock && endRe.MatchString(line):
					inBlock = false
					if !emit(n - 1) {
						return
					}
				case inBlock:
					content = append(content, line)
				}
			}
			if err := sc.Err(); err != nil {
				yield(Chunk{}, domain.NewError("preprocess", path, 0, "failed to read file", err))
				return
			}
			if inBlock {
				emit(n - 1)
			}
		}
	}, nil
}

func pipelineParam(params Params) (Stage, error) {
	decl, err := params.List("processing_pipeline")
	if err != nil {
		return nil, err
	}
	return ParsePipeline(decl)
}

func patternParam(params Params, key string) (*regexp.Regexp, error) {
	pattern, err := params.String(key, "")
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return nil, fmt.Errorf("missing parameter %q", key)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return re, nil
}
