package instruction

import (
	"strconv"
	"strings"

	"its-hmny.dev/agerun/pkg/data"
)

// ----------------------------------------------------------------------------
// Templates

// This section implements the '{name}' placeholder templates shared by the
// 'parse' and 'build' instructions.
//
// A template is literal text interleaved with placeholders. 'parse' runs it
// forward against an input string, matching the literal chunks exactly and
// extracting what lies between them; 'build' runs it backward, substituting
// each placeholder with the string coercion of the value found in a map.

// Extracts the placeholder values of 'template' out of 'input', producing a
// fresh map of name → classified value. A literal chunk that doesn't match
// the input yields an empty map (not an error); a placeholder with no
// closing brace aborts the scan and yields the partial map built so far.
func parseTemplate(template, input string) *data.Value {
	result := data.NewMap()
	ti, ii := 0, 0

	for ti < len(template) && ii < len(input) {
		next := strings.IndexByte(template[ti:], '{')
		if next < 0 {
			// No more placeholders: the remaining template must match the
			// remaining input exactly, otherwise nothing was extracted.
			if template[ti:] != input[ii:] {
				result.Destroy()
				result = data.NewMap()
			}
			break
		}

		nameStart := ti + next
		closing := strings.IndexByte(template[nameStart+1:], '}')
		if closing < 0 {
			break // Missing '}': keep the partial map
		}
		nameEnd := nameStart + 1 + closing
		name := template[nameStart+1 : nameEnd]

		// The literal chunk before the placeholder must match the input.
		if literal := template[ti:nameStart]; literal != "" {
			if !strings.HasPrefix(input[ii:], literal) {
				result.Destroy()
				result = data.NewMap()
				break
			}
			ii += len(literal)
		}

		// The extracted value runs up to the next literal chunk (or to the
		// end of the input when the placeholder is the template's tail).
		ti = nameEnd + 1
		chunkLen := len(template) - ti
		if following := strings.IndexByte(template[ti:], '{'); following >= 0 {
			chunkLen = following
		}

		valueEnd := len(input)
		if chunkLen > 0 {
			position := strings.Index(input[ii:], template[ti:ti+chunkLen])
			if position < 0 {
				result.Destroy()
				result = data.NewMap()
				break
			}
			valueEnd = ii + position
		}

		result.Set(name, classifyValue(input[ii:valueEnd]))

		ii = valueEnd
		if chunkLen > 0 {
			ii += chunkLen
			ti += chunkLen
		}
	}

	return result
}

// Classifies an extracted substring: a full integer parse wins, then a full
// double parse (a '.' is required), otherwise the text stays a string.
func classifyValue(text string) *data.Value {
	if text == "" {
		return data.NewString("")
	}

	if value, err := strconv.ParseInt(text, 10, 32); err == nil {
		return data.NewInteger(int32(value))
	}
	if strings.ContainsRune(text, '.') {
		if value, err := strconv.ParseFloat(text, 64); err == nil {
			return data.NewDouble(value)
		}
	}
	return data.NewString(text)
}

// Renders 'template' with every '{name}' placeholder replaced by the string
// coercion of the value found under 'name' in 'values'. Placeholders that
// don't resolve (missing key, or a list/map value with no string form) are
// preserved verbatim including their braces; an unclosed '{' is copied
// literally and the scan continues after it.
func buildTemplate(template string, values *data.Value) string {
	var result strings.Builder

	i := 0
	for i < len(template) {
		if template[i] != '{' {
			result.WriteByte(template[i])
			i++
			continue
		}

		closing := strings.IndexByte(template[i+1:], '}')
		if closing < 0 {
			result.WriteByte('{')
			i++
			continue
		}
		end := i + 1 + closing

		name := template[i+1 : end]
		if value := values.Get(name); value != nil {
			if text, ok := data.CoerceString(value); ok {
				result.WriteString(text)
				i = end + 1
				continue
			}
		}

		result.WriteString(template[i : end+1])
		i = end + 1
	}

	return result.String()
}
