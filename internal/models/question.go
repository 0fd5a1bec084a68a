package models

import "encoding/json"

// Option is one answer choice for a comprehension question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a single validated comprehension item. The generator rejects
// any item that does not carry exactly four options, a correct answer
// resolvable to one of them, and a non-empty explanation.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// OptionCount is the required number of options per question.
const OptionCount = 4

// Valid reports whether the question satisfies the persisted-shape
// invariants: four options, a correct answer matching one of their ids, and
// non-empty question and explanation text.
func (q *Question) Valid() bool {
	if q.Question == "" || q.Explanation == "" {
		return false
	}
	if len(q.Options) != OptionCount {
		return false
	}
	for _, opt := range q.Options {
		if opt.ID == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// QuestionsJSON marshals questions into the stored column representation.
// Partial updates write raw column values, bypassing the struct serializer,
// so the pipeline serializes explicitly.
func QuestionsJSON(questions []Question) string {
	data, err := json.Marshal(questions)
	if err != nil {
		return "[]"
	}
	return string(data)
}
