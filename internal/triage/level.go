package triage

import "intake-triage/internal/domain"

// DeriveLevel maps answers to a referral level. Emergency and court status
// take priority over income.
func DeriveLevel(a Answers) domain.Level {
	switch {
	case a.Emergency == EmergencyYes || a.InCourt:
		return domain.LevelDirectService
	case a.IncomeEligible:
		return domain.LevelSelfHelp
	default:
		return domain.LevelGeneralInfo
	}
}
