// Package tokenizer provides the fixed token counter used by chunking and
// passage budgets. The count approximates an LLM tokenizer: one unit per
// ASCII word plus one unit per rune above 0x7F (CJK text has no spaces to
// split on). The same function is used everywhere a token count is stored
// or compared, so budgets stay consistent across ingest and retrieval.
package tokenizer

import "strings"

func Count(text string) int {
	count := 0
	for _, r := range text {
		if r > 127 {
			count++
		}
	}
	count += len(strings.Fields(text))
	if count == 0 && len(text) > 0 {
		return 1
	}
	return count
}
