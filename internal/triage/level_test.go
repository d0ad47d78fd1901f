package triage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"intake-triage/internal/domain"
)

func TestDeriveLevel(t *testing.T) {
	cases := []struct {
		emergency Emergency
		inCourt   bool
		eligible  bool
		want      domain.Level
	}{
		{EmergencyYes, true, true, domain.LevelDirectService},
		{EmergencyYes, true, false, domain.LevelDirectService},
		{EmergencyYes, false, true, domain.LevelDirectService},
		{EmergencyYes, false, false, domain.LevelDirectService},
		{EmergencyNo, true, true, domain.LevelDirectService},
		{EmergencyNo, true, false, domain.LevelDirectService},
		{EmergencyNo, false, true, domain.LevelSelfHelp},
		{EmergencyNo, false, false, domain.LevelGeneralInfo},
		{EmergencyUnknown, true, false, domain.LevelDirectService},
		{EmergencyUnknown, false, true, domain.LevelSelfHelp},
		{EmergencyUnknown, false, false, domain.LevelGeneralInfo},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/court=%t/eligible=%t", tc.emergency, tc.inCourt, tc.eligible), func(t *testing.T) {
			got := DeriveLevel(Answers{Topic: domain.TopicHousing, Emergency: tc.emergency, InCourt: tc.inCourt, IncomeEligible: tc.eligible})
			require.Equal(t, tc.want, got)
		})
	}
}
