package qa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes either an object of question -> answer or an array of
// {"question", "answer"} objects. Object keys are read as tokens so the file
// order survives decoding. Answers that are not strings keep their JSON text.
func ParseJSON(data []byte) ([]Pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("expected an object or array, got %v", tok)
	}

	pairs := []Pair{}
	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			question, _ := keyTok.(string)

			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("answer for %q: %w", question, err)
			}
			answer, err := answerText(raw)
			if err != nil {
				return nil, fmt.Errorf("answer for %q: %w", question, err)
			}
			pairs = append(pairs, Pair{Question: question, Answer: answer})
		}
	case '[':
		for i := 0; dec.More(); i++ {
			var entry struct {
				Question string          `json:"question"`
				Answer   json.RawMessage `json:"answer"`
			}
			if err := dec.Decode(&entry); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if entry.Question == "" {
				return nil, fmt.Errorf("entry %d has no question", i)
			}
			answer, err := answerText(entry.Answer)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			pairs = append(pairs, Pair{Question: entry.Question, Answer: answer})
		}
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}

	// closing delimiter
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}

	return pairs, nil
}

// answerText returns a JSON string answer as is and any other value as its
// compact JSON text; an absent answer is empty.
func answerText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseYAML decodes a mapping of question -> answer or a sequence of
// {question, answer} mappings, keeping document order.
func ParseYAML(data []byte) ([]Pair, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	pairs := []Pair{}
	if len(root.Content) == 0 {
		return pairs, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			keyNode, valueNode := doc.Content[i], doc.Content[i+1]
			var answer string
			if err := valueNode.Decode(&answer); err != nil {
				return nil, fmt.Errorf("line %d: answer for %q: %w", valueNode.Line, keyNode.Value, err)
			}
			pairs = append(pairs, Pair{Question: keyNode.Value, Answer: answer})
		}
	case yaml.SequenceNode:
		for i, item := range doc.Content {
			var p Pair
			if err := item.Decode(&p); err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			if p.Question == "" {
				return nil, fmt.Errorf("entry %d has no question", i)
			}
			pairs = append(pairs, p)
		}
	case yaml.ScalarNode:
		if doc.Tag == "!!null" {
			return pairs, nil
		}
		return nil, fmt.Errorf("line %d: expected a mapping or sequence", doc.Line)
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or sequence", doc.Line)
	}

	return pairs, nil
}
