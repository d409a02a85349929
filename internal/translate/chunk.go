package translate

import "strings"

// SentenceDelimiter separates sentences in a transcript. This is a naive
// Latin-script heuristic: abbreviations and decimals split early, and scripts
// with other full stops (Urdu "۔", Devanagari "।", CJK "。") never split.
const SentenceDelimiter = ". "

// SplitChunks groups the sentences of text into chunks for translation.
//
// Each sentence is appended to a buffer followed by SentenceDelimiter. The
// buffer is emitted once its UTF-8 byte length reaches threshold, and always
// after the last sentence. Sentences are never split, so a chunk may exceed
// threshold; only the final chunk may fall short of it.
func SplitChunks(text string, threshold int) []string {
	sentences := strings.Split(text, SentenceDelimiter)

	var (
		chunks []string
		buf    strings.Builder
	)
	for i, sentence := range sentences {
		buf.WriteString(sentence)
		buf.WriteString(SentenceDelimiter)

		if buf.Len() >= threshold || i == len(sentences)-1 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	return chunks
}
