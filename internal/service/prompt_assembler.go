package service

import (
	"strings"

	"mindful-chat/internal/domain"
)

// preambleMarker identifica el texto del preámbulo aunque haya quedado guardado con otro rol.
const preambleMarker = "You are a professional mental health assistant"

const preambleInstructions = preambleMarker + ` named MindfulBot. ` +
	`Respond with empathy, warmth and without judgement. Offer practical, evidence-based coping ` +
	`strategies such as breathing exercises, grounding techniques and journaling. You are not a ` +
	`replacement for a licensed professional: never diagnose, and when the user mentions self-harm, ` +
	`suicide or immediate danger, urge them to contact local emergency services or a crisis line right away. ` +
	`Keep answers concise and ask one gentle follow-up question when it helps.`

const preambleFormatting = `Formatting rules for MindfulBot: write links as markdown [text](https://url). ` +
	`When recommending a video, use exactly [YouTube Video: title](https://www.youtube.com/watch?v=ID). ` +
	`Do not use HTML.`

// PromptAssembler construye la secuencia enviada al proveedor y la vista que se expone al cliente.
type PromptAssembler struct {
	preamble []domain.Turn
}

// NewPromptAssembler usa el preámbulo por defecto de MindfulBot.
func NewPromptAssembler() PromptAssembler {
	return PromptAssembler{preamble: []domain.Turn{
		{Role: domain.RoleSystem, Text: preambleInstructions},
		{Role: domain.RoleSystem, Text: preambleFormatting},
	}}
}

// Preamble devuelve una copia de los turnos de sistema fijos.
func (a PromptAssembler) Preamble() []domain.Turn {
	return append([]domain.Turn(nil), a.preamble...)
}

// HasPreamble indica si el log ya empieza con el preámbulo, sea como turnos de sistema
// o como el texto heredado guardado con otro rol.
func (a PromptAssembler) HasPreamble(log []domain.Turn) bool {
	return len(log) > 0 && (log[0].Role == domain.RoleSystem || a.isPreambleText(log[0].Text))
}

// ToProviderRequest antepone el preámbulo si el log no lo trae; si lo trae, lo deja intacto.
func (a PromptAssembler) ToProviderRequest(log []domain.Turn) []domain.Turn {
	if a.HasPreamble(log) {
		return append([]domain.Turn(nil), log...)
	}
	out := make([]domain.Turn, 0, len(a.preamble)+len(log))
	out = append(out, a.preamble...)
	return append(out, log...)
}

// ToClientView quita todos los turnos de sistema. El texto del preámbulo guardado con otro rol
// solo se reconoce en el tramo inicial del log; un turno normal nunca se oculta por citarlo.
func (a PromptAssembler) ToClientView(log []domain.Turn) []domain.Turn {
	out := make([]domain.Turn, 0, len(log))
	leading := true
	for i, t := range log {
		if t.Role == domain.RoleSystem {
			continue
		}
		if leading && i < len(a.preamble) && a.isPreambleText(t.Text) {
			continue
		}
		leading = false
		out = append(out, t)
	}
	return out
}

func (a PromptAssembler) isPreambleText(text string) bool {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, preambleMarker) {
		return true
	}
	for _, p := range a.preamble {
		if text == p.Text {
			return true
		}
	}
	return false
}
