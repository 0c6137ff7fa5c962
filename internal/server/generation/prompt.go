// Package generation builds letter drafting prompts and calls the external
// text generation service.
package generation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/letterdesk/internal/common"
)

type Tone string

const (
	ToneFormal       Tone = "Formal"
	ToneAggressive   Tone = "Aggressive"
	ToneConciliatory Tone = "Conciliatory"
	ToneNeutral      Tone = "Neutral"
)

func (t Tone) Valid() bool {
	switch t {
	case "", ToneFormal, ToneAggressive, ToneConciliatory, ToneNeutral:
		return true
	}
	return false
}

type Length string

const (
	LengthShort  Length = "Short"
	LengthMedium Length = "Medium"
	LengthLong   Length = "Long"
)

func (l Length) Valid() bool {
	switch l {
	case "", LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

func (l Length) describe() string {
	switch l {
	case LengthShort:
		return "concise and to the point."
	case LengthMedium:
		return "standard, with sufficient detail."
	case LengthLong:
		return "comprehensive and highly detailed."
	}
	return ""
}

// Request is the input of one draft generation. Tone and Length are optional.
type Request struct {
	Title             string
	TemplateBody      string
	TemplateFields    map[string]string
	AdditionalContext string
	Tone              Tone
	Length            Length
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.TemplateBody) == "" {
		return fmt.Errorf("%w: title and template body are required", common.ErrValidation)
	}
	if !r.Tone.Valid() {
		return fmt.Errorf("%w: unknown tone %q", common.ErrValidation, r.Tone)
	}
	if !r.Length.Valid() {
		return fmt.Errorf("%w: unknown length %q", common.ErrValidation, r.Length)
	}
	return nil
}

// SystemInstruction constrains the model output to the letter body.
const SystemInstruction = `You are an expert legal assistant. Your primary task is to complete a given letter template using user-provided details.

Follow these instructions strictly:
1. Carefully replace the placeholders (e.g., [Your Name], [Amount Owed]) in the template with the corresponding user-provided details.
2. If a detail for a placeholder is not provided, you MUST replace it with "` + common.InformationNotProvided + `" in the final letter. Do not leave the original placeholder in the text.
3. Incorporate the "Additional Context" where it is most relevant within the letter body.
4. Ensure the final letter flows naturally and is grammatically correct after filling in the details.
5. Adhere strictly to any provided Tone & Style instructions.
6. Your entire response must be ONLY the completed body of the letter. Do not include a subject line, greetings, sign-offs, or explanations.`

// BuildPrompt renders the user prompt. Fields are listed in key order; empty
// values are rendered as the not-provided marker.
func BuildPrompt(r Request) string {
	var b strings.Builder

	b.WriteString("Please complete the letter.\n")
	fmt.Fprintf(&b, "The letter's subject is %q.\n\n", r.Title)

	b.WriteString("**Template to complete:**\n---\n")
	b.WriteString(r.TemplateBody)
	b.WriteString("\n---\n\n")

	b.WriteString("**User-provided details to fill in the placeholders:**\n")
	keys := make([]string, 0, len(r.TemplateFields))
	for k := range r.TemplateFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(r.TemplateFields[k])
		if v == "" {
			v = common.InformationNotProvided
		}
		fmt.Fprintf(&b, "- %s: %s\n", k, v)
	}

	b.WriteString("\n**Additional Context from the user (incorporate this where relevant):**\n")
	if ctx := strings.TrimSpace(r.AdditionalContext); ctx != "" {
		b.WriteString(ctx)
	} else {
		b.WriteString("No additional context provided.")
	}
	b.WriteString("\n")

	if r.Tone != "" || r.Length != "" {
		b.WriteString("\n**Tone & Style Instructions:**\n")
		if r.Tone != "" {
			fmt.Fprintf(&b, "- **Tone:** The tone of the letter should be professional and %s.\n", strings.ToLower(string(r.Tone)))
		}
		if r.Length != "" {
			fmt.Fprintf(&b, "- **Length:** The filled-in sections should be relatively %s, resulting in a letter that is %s\n",
				strings.ToLower(string(r.Length)), r.Length.describe())
		}
	}

	return b.String()
}
