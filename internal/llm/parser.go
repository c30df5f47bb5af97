package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spherical/question-agent/internal/domain"
)

type wireReply struct {
	Question *string      `json:"question"`
	Answer   []wireOption `json:"answer"`
}

type wireOption struct {
	Option      *string `json:"option"`
	IsCorrect   *bool   `json:"isCorrect"`
	Explanation string  `json:"explanation"`
}

// ParseReply validates a model reply and converts it to a StructuredQuestion.
// Prose or a markdown code fence around the JSON object is tolerated. Every
// failure is a structuring error carrying raw.
func ParseReply(raw string) (*domain.StructuredQuestion, error) {
	body, ok := extractJSONObject(raw)
	if !ok {
		return nil, domain.StructuringError("reply contains no JSON object", raw, nil)
	}

	var reply wireReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, domain.StructuringError("reply is not valid JSON", raw, err)
	}

	if reply.Question == nil || domain.IsBlank(*reply.Question) {
		return nil, domain.StructuringError("reply has no question text", raw, nil)
	}
	if len(reply.Answer) == 0 {
		return nil, domain.StructuringError("reply has no answer options", raw, nil)
	}

	q := &domain.StructuredQuestion{
		QuestionText: strings.TrimSpace(*reply.Question),
		Options:      make([]domain.AnswerOption, 0, len(reply.Answer)),
	}
	for i, opt := range reply.Answer {
		if opt.Option == nil || domain.IsBlank(*opt.Option) {
			return nil, domain.StructuringError(fmt.Sprintf("answer %d has no option text", i+1), raw, nil)
		}
		if opt.IsCorrect == nil {
			return nil, domain.StructuringError(fmt.Sprintf("answer %d is missing isCorrect", i+1), raw, nil)
		}
		q.Options = append(q.Options, domain.AnswerOption{
			Label:       strings.TrimSpace(*opt.Option),
			IsCorrect:   *opt.IsCorrect,
			Explanation: strings.TrimSpace(opt.Explanation),
		})
	}

	return q, nil
}

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
