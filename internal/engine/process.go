package engine

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/xgrep/xgrep/internal/archive"
	"github.com/xgrep/xgrep/internal/boolquery"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/engineerr"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pathselect"
	"github.com/xgrep/xgrep/internal/pattern"
	"github.com/xgrep/xgrep/internal/stream"
	"github.com/xgrep/xgrep/internal/textenc"
)

// processSource opens source, expands it through archive decompression if -z
// is set, and hands
// every resulting stream to scanAndEmit. emitResult is called once per
// produced FileResult — once for a plain file, once per archive member for
// a container, or once for the innermost decompressed stream of a (possibly
// nested) compressed file. A failed expansion adds one more FileResult
// carrying the error.
func processSource(ctx context.Context, cfg *config.Config, pat *pattern.Pattern, leaves []*pattern.Pattern, query *boolquery.Query, selector *pathselect.Selector, cancelled func() bool, source *model.InputSource, emitResult func(*model.FileResult)) {
	rc, err := openSource(source)
	if err != nil {
		emitResult(&model.FileResult{Source: source, Err: engineerr.Source(source.DisplayPath(), err)})
		return
	}
	defer rc.Close()

	if !cfg.Decompress {
		scanAndEmit(cfg, pat, leaves, query, source, rc, cancelled, emitResult)
		return
	}

	err = archive.Expand(source, rc, cfg.ZMax, func(child *model.InputSource, r io.Reader) (bool, error) {
		br := bufio.NewReaderSize(r, 64*1024)
		if child != source {
			head, _ := br.Peek(512)
			rel := child.InnerPath
			if rel == "" {
				rel = child.Format
			}
			if !selector.Accept(rel, head) {
				return true, nil
			}
		}
		scanAndEmit(cfg, pat, leaves, query, child, br, cancelled, emitResult)
		return true, nil
	})
	if err != nil {
		emitResult(&model.FileResult{Source: source, Err: engineerr.Source(source.DisplayPath(), err)})
	}
}

// scanAndEmit normalizes source's encoding and drives it through the line
// scanner (or, for a Boolean query, ScanBool), assembling matches via
// collectingSink and
// emitting the resulting FileResult.
func scanAndEmit(cfg *config.Config, pat *pattern.Pattern, leaves []*pattern.Pattern, query *boolquery.Query, source *model.InputSource, r io.Reader, cancelled func() bool, emitResult func(*model.FileResult)) {
	encReader, err := normalizeEncoding(cfg, r)
	if err != nil {
		emitResult(&model.FileResult{Source: source, Err: engineerr.Source(source.DisplayPath(), err)})
		return
	}

	opts := stream.FromConfig(cfg)
	opts.Cancel = cancelled
	sink := newCollectingSink(opts)

	var result *model.FileResult
	if query != nil {
		result, err = stream.ScanBool(source, encReader, leaves, query, opts, sink)
	} else {
		result, err = stream.Scan(source, encReader, pat, opts, sink)
	}
	if result == nil {
		result = &model.FileResult{Source: source}
	}
	if err != nil {
		result.Err = engineerr.Source(source.DisplayPath(), err)
	}
	result.Matches = sink.records
	result.Keys = model.SortKey{
		Name:  source.DisplayPath(),
		Size:  source.Size,
		Mtime: source.Mtime,
	}
	result.Keys.BestFuzzyCost = minFuzzyCost(sink.records)
	emitResult(result)
}

// normalizeEncoding wraps r in the encoding-transcoding reader, sniffing a BOM off
// its head when cfg.Encoding doesn't force one.
func normalizeEncoding(cfg *config.Config, r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, 4096)
	head, _ := br.Peek(4)
	det := textenc.Sniff(head, cfg.Encoding)
	if det.BOMLength > 0 {
		if _, err := br.Discard(det.BOMLength); err != nil {
			return nil, err
		}
	}
	return textenc.NewReader(br, det, cfg.Encoding)
}

// minFuzzyCost returns the lowest FuzzyCost among recs, or -1 if none carry
// one (feeds SortKey.BestFuzzyCost for --sort=best).
func minFuzzyCost(recs []model.MatchRecord) int {
	best := -1
	for _, r := range recs {
		if r.FuzzyCost < 0 {
			continue
		}
		if best < 0 || r.FuzzyCost < best {
			best = r.FuzzyCost
		}
	}
	return best
}

func openSource(source *model.InputSource) (io.ReadCloser, error) {
	if source.Kind == model.SourceStdin {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(source.Path)
}

// stdinSource builds the InputSource for a search with no root paths.
func stdinSource(cfg *config.Config) *model.InputSource {
	label := cfg.Label
	if label == "" {
		label = "(standard input)"
	}
	return &model.InputSource{Kind: model.SourceStdin, Path: label}
}
