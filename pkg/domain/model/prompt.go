package model

// ReviewPrompt is the bounded request sent to the analysis service.
// Text is always within the budget it was formatted under, and the
// same (diff, metadata, budget) triple always yields identical Text.
type ReviewPrompt struct {
	Text      string
	Truncated bool
}

// Size returns the serialized size of the prompt in bytes
func (p *ReviewPrompt) Size() int {
	return len(p.Text)
}
