package triage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"intake-triage/internal/domain"
)

func TestSession_RoundTripEveryStep(t *testing.T) {
	answers := Answers{Topic: domain.TopicDivorce, Emergency: EmergencyUnknown, InCourt: false, IncomeEligible: false}
	result := Result{Answers: answers, ZipCode: "62701", Level: domain.LevelGeneralInfo}
	states := []State{
		TopicSelection{},
		EmergencyCheck{Topic: domain.TopicDivorce},
		CourtStatus{Topic: domain.TopicDivorce, Emergency: EmergencyUnknown},
		IncomeCheck{Topic: domain.TopicDivorce, Emergency: EmergencyUnknown, InCourt: false},
		GetZip{answers},
		Complete{Result: result, Farewell: true},
		ContinueCheck{result},
		ResourceSelected{result},
	}
	for _, st := range states {
		t.Run(string(st.Step()), func(t *testing.T) {
			in := Session{ID: "abc", State: st}
			raw, err := json.Marshal(in)
			require.NoError(t, err)

			out, ok := DecodeSession(raw)
			require.True(t, ok)
			require.Equal(t, in, out)
		})
	}
}

func TestSession_WireShape(t *testing.T) {
	s := Session{ID: "abc", State: Complete{Result: Result{
		Answers: Answers{Topic: domain.TopicHousing, Emergency: EmergencyNo, InCourt: false, IncomeEligible: true},
		ZipCode: "60601",
		Level:   domain.LevelSelfHelp,
	}}}
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"session_id": "abc",
		"step": "complete",
		"topic": "housing",
		"emergency": "no",
		"in_court": false,
		"income_eligible": true,
		"zip_code": "60601",
		"level": 2
	}`, string(raw))

	raw, err = json.Marshal(Session{State: EmergencyCheck{Topic: domain.TopicHousing}})
	require.NoError(t, err)
	require.JSONEq(t, `{"step":"emergency_check","topic":"housing"}`, string(raw))
}

func TestDecodeSession_EmptyInputStartsFresh(t *testing.T) {
	for _, raw := range []string{"", "  ", "null"} {
		s, ok := DecodeSession([]byte(raw))
		require.False(t, ok, raw)
		require.Equal(t, NewSession(""), s)
	}

	s, ok := DecodeSession([]byte(`{}`))
	require.True(t, ok)
	require.Equal(t, NewSession(""), s)
}

func TestDecodeSession_RejectsInconsistentState(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"step":`,
		"unknown step":      `{"step":"teleport"}`,
		"missing topic":     `{"step":"emergency_check"}`,
		"unknown topic":     `{"step":"emergency_check","topic":"taxes"}`,
		"bad emergency":     `{"step":"court_status","topic":"housing","emergency":"maybe"}`,
		"missing in_court":  `{"step":"income_check","topic":"housing","emergency":"no"}`,
		"missing income":    `{"step":"get_zip","topic":"housing","emergency":"no","in_court":false}`,
		"bad zip":           `{"step":"complete","topic":"housing","emergency":"no","in_court":false,"income_eligible":true,"zip_code":"6060","level":2}`,
		"level mismatch":    `{"step":"complete","topic":"housing","emergency":"no","in_court":false,"income_eligible":true,"zip_code":"60601","level":3}`,
		"array not object":  `[]`,
		"wrong field types": `{"step":"income_check","topic":"housing","emergency":"no","in_court":"yes"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			s, ok := DecodeSession([]byte(raw))
			require.False(t, ok)
			require.Equal(t, NewSession(""), s)
		})
	}
}

func TestDecodeSession_IgnoresFieldsOutsideTheStep(t *testing.T) {
	s, ok := DecodeSession([]byte(`{"session_id":"x","step":"topic_selection","topic":"housing","level":3}`))
	require.True(t, ok)
	require.Equal(t, Session{ID: "x", State: TopicSelection{}}, s)
}

func TestMarshal_UnknownStateFails(t *testing.T) {
	_, err := json.Marshal(Session{State: bogusState{}})
	require.Error(t, err)
}

type bogusState struct{}

func (bogusState) Step() Step { return "bogus" }
func (bogusState) isState()   {}
