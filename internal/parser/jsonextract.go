package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON salvages a JSON object from LLM output text. Models sometimes
// wrap the object in a markdown fence or surround it with prose despite the
// prompt; three attempts are made in order:
//
//  1. the whole trimmed text
//  2. the content of the outermost ``` fence, first line (language tag) dropped
//  3. the slice from the first '{' to the last '}'
func ExtractJSON(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if raw, ok := tryJSON(trimmed); ok {
		return raw, nil
	}

	if start := strings.Index(trimmed, "```"); start != -1 {
		if end := strings.LastIndex(trimmed, "```"); end > start {
			block := trimmed[start:end]
			if nl := strings.IndexByte(block, '\n'); nl != -1 {
				block = block[nl+1:]
			}
			if raw, ok := tryJSON(strings.TrimSpace(block)); ok {
				return raw, nil
			}
		}
	}

	if start := strings.IndexByte(trimmed, '{'); start != -1 {
		if end := strings.LastIndexByte(trimmed, '}'); end > start {
			if raw, ok := tryJSON(trimmed[start : end+1]); ok {
				return raw, nil
			}
		}
	}

	return nil, fmt.Errorf("no JSON object found in LLM output")
}

func tryJSON(s string) (json.RawMessage, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}
