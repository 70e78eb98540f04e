// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package macro

import (
	"path"
	"strings"
	"unicode"
)

// applyOperator implements the retrieval operators. Unknown operators leave the value as is.
func applyOperator(op, arg, value string) string {
	switch op {
	case "lower":
		return strings.ToLower(value)
	case "upper":
		return strings.ToUpper(value)
	case "file":
		if value == "" {
			return ""
		}
		return path.Base(value)
	case "dir":
		if value == "" {
			return ""
		}
		return path.Dir(value) + "/"
	case "base":
		if value == "" {
			return ""
		}
		base := path.Base(value)
		return strings.TrimSuffix(base, path.Ext(base))
	case "suffix":
		return path.Ext(value)
	case "standardizepath":
		if value == "" {
			return ""
		}
		return path.Clean(value)
	case "quote":
		return quoteWord(value)
	case "identifier", "c99extidentifier":
		return toIdentifier(value, '_', true)
	case "rfc1034identifier":
		return toIdentifier(value, '-', false)
	case "default":
		if value == "" {
			return arg
		}
		return value
	default:
		return value
	}
}

func toIdentifier(value string, replacement rune, noLeadingDigit bool) string {
	var sb strings.Builder
	for i, r := range value {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' && replacement == '_'):
			if i == 0 && noLeadingDigit && unicode.IsDigit(r) {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(replacement)
		}
	}
	return sb.String()
}

// SplitList splits a list value on whitespace. Single or double quotes group words, and a
// backslash escapes the next character. Quotes and escapes are removed.
func SplitList(value string) []string {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range value {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped, inWord = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote, inWord = r, true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, current.String())
	}
	return words
}

// JoinList is the inverse of SplitList.
func JoinList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = quoteWord(w)
	}
	return strings.Join(quoted, " ")
}

func quoteWord(w string) string {
	if w == "" {
		return `""`
	}
	if !strings.ContainsAny(w, " \t\n\"'\\") {
		return w
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range w {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// ParseBool interprets YES, TRUE and 1 (case-insensitive) as true; anything else is false.
func ParseBool(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "YES", "TRUE", "1":
		return true
	default:
		return false
	}
}

// FormatBool returns the canonical YES/NO spelling.
func FormatBool(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
