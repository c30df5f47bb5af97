package notion

import (
	"github.com/jomei/notionapi"

	"github.com/spherical/question-agent/internal/domain"
)

// maxTextLen is Notion's per rich text object content limit.
const maxTextLen = 2000

// Labels are the prefixes shown before each explanation.
type Labels struct {
	Correct   string
	Incorrect string
}

// DefaultLabels returns the Spanish labels.
func DefaultLabels() Labels {
	return Labels{Correct: "Correcto", Incorrect: "Incorrecto"}
}

// BuildPayload renders a question as one numbered list item holding one toggle
// per option. Each toggle reveals a colored verdict label and the explanation.
func BuildPayload(q *domain.StructuredQuestion, labels Labels) *notionapi.AppendBlockChildrenRequest {
	toggles := make([]notionapi.Block, 0, len(q.Options))
	for _, opt := range q.Options {
		label, color := labels.Incorrect, notionapi.ColorRed
		if opt.IsCorrect {
			label, color = labels.Correct, notionapi.ColorGreen
		}

		verdict := notionapi.RichText{
			Type:        notionapi.ObjectTypeText,
			Text:        &notionapi.Text{Content: label + ": "},
			Annotations: &notionapi.Annotations{Code: true, Color: color},
		}

		toggles = append(toggles, &notionapi.ToggleBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeToggle),
			Toggle: notionapi.Toggle{
				RichText: plainText(opt.Label),
				Children: []notionapi.Block{
					&notionapi.ParagraphBlock{
						BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
						Paragraph: notionapi.Paragraph{
							RichText: append([]notionapi.RichText{verdict}, plainText(opt.Explanation)...),
						},
					},
				},
			},
		})
	}

	return &notionapi.AppendBlockChildrenRequest{
		Children: []notionapi.Block{
			&notionapi.NumberedListItemBlock{
				BasicBlock: basicBlock(notionapi.BlockTypeNumberedListItem),
				NumberedListItem: notionapi.ListItem{
					RichText: plainText(q.QuestionText),
					Children: toggles,
				},
			},
		},
	}
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
}

// plainText splits s into unstyled runs that respect maxTextLen.
func plainText(s string) []notionapi.RichText {
	runes := []rune(s)
	if len(runes) == 0 {
		return []notionapi.RichText{textRun("")}
	}
	var out []notionapi.RichText
	for len(runes) > 0 {
		n := min(len(runes), maxTextLen)
		out = append(out, textRun(string(runes[:n])))
		runes = runes[n:]
	}
	return out
}

func textRun(s string) notionapi.RichText {
	return notionapi.RichText{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}
}
