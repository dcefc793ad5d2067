package asr

import (
	"sort"

	"subweave/internal/scriptid"
	"subweave/internal/segmenter"
)

// Stitch reassembles per-chunk transcripts into one timeline. Sentence
// timings shift by the chunk offset; sentences that fall entirely inside the
// overlap already covered by the previous chunk are dropped, since the
// previous chunk heard them in full. Identical spans recognized twice
// deduplicate, preferring the reading that carries kana over a
// kanji-only one.
func Stitch(chunks []Chunk, perChunk [][]segmenter.Sentence) []segmenter.Sentence {
	var out []segmenter.Sentence
	for i, sentences := range perChunk {
		if i >= len(chunks) {
			break
		}
		chunk := chunks[i]
		var coveredUntil int64
		if i > 0 {
			coveredUntil = chunks[i-1].OffsetMS + chunks[i-1].DurationMS
		}
		for _, sentence := range sentences {
			shifted := shiftSentence(sentence, chunk.OffsetMS)
			if i > 0 && shifted.EndMS <= coveredUntil {
				continue
			}
			out = append(out, shifted)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].StartMS < out[b].StartMS
	})
	return dedupeSpans(out)
}

func shiftSentence(s segmenter.Sentence, offsetMS int64) segmenter.Sentence {
	s.StartMS += offsetMS
	s.EndMS += offsetMS
	words := make([]segmenter.Word, len(s.Words))
	for i, w := range s.Words {
		w.StartMS += offsetMS
		w.EndMS += offsetMS
		words[i] = w
	}
	s.Words = words
	return s
}

// dedupeSpans removes sentences that duplicate an identical time span.
// When duplicate readings differ, kana-bearing text wins: a chunk boundary
// can make a backend emit a kanji-only reading for the same speech.
func dedupeSpans(sentences []segmenter.Sentence) []segmenter.Sentence {
	type span struct{ start, end int64 }
	index := make(map[span]int, len(sentences))
	out := make([]segmenter.Sentence, 0, len(sentences))
	for _, sentence := range sentences {
		key := span{sentence.StartMS, sentence.EndMS}
		if at, dup := index[key]; dup {
			if preferReading(sentence.Text, out[at].Text) {
				out[at] = sentence
			}
			continue
		}
		index[key] = len(out)
		out = append(out, sentence)
	}
	return out
}

func preferReading(candidate, incumbent string) bool {
	candStats := scriptid.Analyze(candidate)
	incStats := scriptid.Analyze(incumbent)
	return candStats.HasKana() && !incStats.HasKana()
}
