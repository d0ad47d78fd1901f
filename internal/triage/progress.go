package triage

// Progress is informational UI metadata for the current step.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
}

const totalSteps = 5

var progressByStep = map[Step]Progress{
	StepTopicSelection:   {Current: 1, Total: totalSteps, Label: "select_topic"},
	StepEmergencyCheck:   {Current: 2, Total: totalSteps, Label: "emergency_check"},
	StepCourtStatus:      {Current: 3, Total: totalSteps, Label: "court_status"},
	StepIncomeCheck:      {Current: 4, Total: totalSteps, Label: "income_level"},
	StepGetZip:           {Current: 5, Total: totalSteps, Label: "your_location"},
	StepComplete:         {Current: 5, Total: totalSteps, Label: "resources_ready"},
	StepContinueCheck:    {Current: 5, Total: totalSteps, Label: "resources_ready"},
	StepResourceSelected: {Current: 5, Total: totalSteps, Label: "resources_ready"},
}

// ProgressFor maps a step to its progress entry; unknown steps report the
// starting entry.
func ProgressFor(step Step) Progress {
	if p, ok := progressByStep[step]; ok {
		return p
	}
	return Progress{Current: 1, Total: totalSteps, Label: "starting"}
}
