package dto

// RefinementOptions are the structured knobs compiled into a
// natural-language instruction for the AI.
type RefinementOptions struct {
	Tone              string `json:"tone" binding:"omitempty,oneof=professional friendly casual formal warm direct"`
	Length            string `json:"length" binding:"omitempty,oneof=concise medium detailed"`
	Formality         int    `json:"formality" binding:"omitempty,min=1,max=5"`
	Urgency           string `json:"urgency" binding:"omitempty,oneof=low normal high"`
	CustomInstruction string `json:"customInstruction"`
}

type GenerateReplyRequest struct {
	Instruction       string             `json:"instruction"`
	TemplateID        string             `json:"templateId"`
	RefinementOptions *RefinementOptions `json:"refinementOptions" binding:"omitempty"`
}

type SendReplyRequest struct {
	Reply     string `json:"reply" binding:"required"`
	Signature string `json:"signature"`
}
