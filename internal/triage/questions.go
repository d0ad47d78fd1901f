package triage

import "intake-triage/internal/domain"

// Question is one questionnaire step as shown to clients that render their
// own forms.
type Question struct {
	Step     Step     `json:"step"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Progress Progress `json:"progress"`
}

// Questions lists the questionnaire steps in the order Handle asks them.
// The get_zip step takes free text and has no options.
func Questions(lang domain.Language) []Question {
	msg := messagesFor(lang)
	qs := []Question{
		{Step: StepTopicSelection, Prompt: msg.topicPrompt, Options: topicOptions()},
		{Step: StepEmergencyCheck, Prompt: msg.emergencyPrompt, Options: emergencyOptions()},
		{Step: StepCourtStatus, Prompt: msg.courtPrompt, Options: yesNoOptions()},
		{Step: StepIncomeCheck, Prompt: msg.incomePrompt, Options: incomeOptions()},
		{Step: StepGetZip, Prompt: msg.zipPrompt, Options: []string{}},
	}
	for i := range qs {
		qs[i].Progress = ProgressFor(qs[i].Step)
	}
	return qs
}
