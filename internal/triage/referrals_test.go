package triage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInCookCounty(t *testing.T) {
	for _, zip := range []string{"60601", "60647", "60707", "60803", "60201", "60402", "60153"} {
		require.True(t, InCookCounty(zip), zip)
	}
	for _, zip := range []string{"62701", "61820", "60540", "60002", "6060", "ABCDE"} {
		require.False(t, InCookCounty(zip), zip)
	}
}

func TestProgressFor(t *testing.T) {
	require.Equal(t, Progress{Current: 1, Total: 5, Label: "select_topic"}, ProgressFor(StepTopicSelection))
	require.Equal(t, Progress{Current: 4, Total: 5, Label: "income_level"}, ProgressFor(StepIncomeCheck))
	require.Equal(t, Progress{Current: 5, Total: 5, Label: "resources_ready"}, ProgressFor(StepResourceSelected))
	require.Equal(t, Progress{Current: 1, Total: 5, Label: "starting"}, ProgressFor("somewhere"))
}
