package challenge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonRoundTrip(t *testing.T, v map[string]any) map[string]any {
	b, err := json.Marshal(v)
	require.NoError(t, err)

	result := map[string]any{}
	require.NoError(t, json.Unmarshal(b, &result))
	return result
}

func TestSerializeAction(t *testing.T) {
	testCases := []struct {
		name   string
		action Action
	}{
		{
			name: "create",
			action: &CreateChallenge{
				EntryFee:        18_446_744_073_709_551_615,
				StartTime:       1_700_000_000,
				MaxParticipants: 50,
				Name:            "Read daily",
				Description:     "One chapter a day",
			},
		},
		{name: "join", action: &JoinChallenge{}},
		{name: "task", action: &CompleteTask{TaskID: 9, PointsEarned: 12, Week: 2}},
		{name: "eliminate", action: &WeeklyElimination{Week: 1, Participant: bob}},
		{
			name:   "distribute",
			action: &DistributeWeeklyRewards{Week: 3, Winner1: alice, Winner2: bob, Winner3: carol},
		},
		{name: "end", action: &EndChallenge{}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			value := jsonRoundTrip(t, SerializeAction(tt.action))

			got, err := DeserializeAction(string(tt.action.Type()), value)
			require.NoError(t, err)
			require.Equal(t, tt.action, got)
		})
	}
}

func TestDeserializeAction_Invalid(t *testing.T) {
	_, err := DeserializeAction("unknown", map[string]any{})
	require.Error(t, err)

	_, err = DeserializeAction(string(WeeklyEliminationAction), map[string]any{
		"week":        "1",
		"participant": "not an address",
	})
	require.Error(t, err)

	_, err = DeserializeAction(string(CompleteTaskAction), map[string]any{"week": "-1"})
	require.Error(t, err)
}

func TestReplay(t *testing.T) {
	type entry struct {
		call   Call
		action Action
	}

	m := New(Deployment{InstanceID: 7, Creator: creator})
	ledger := []entry{
		{Call{Caller: creator}, &CreateChallenge{EntryFee: 1_000, MaxParticipants: 5}},
		{Call{Caller: alice, Payment: 1_000}, &JoinChallenge{}},
		{Call{Caller: bob, Payment: 1_000}, &JoinChallenge{}},
		{Call{Caller: carol, Payment: 1_000}, &JoinChallenge{}},
		{Call{Caller: alice, Time: 10}, &CompleteTask{TaskID: 1, PointsEarned: 5, Week: 1}},
		{Call{Caller: creator}, &WeeklyElimination{Week: 1, Participant: carol}},
		{Call{Caller: creator}, &DistributeWeeklyRewards{Week: 1, Winner1: alice, Winner2: bob, Winner3: alice}},
	}

	type stored struct {
		call       Call
		actionType string
		value      map[string]any
	}

	var log []stored
	for _, e := range ledger {
		_, err := m.Apply(e.call, e.action)
		require.NoError(t, err)
		log = append(log, stored{e.call, string(e.action.Type()), jsonRoundTrip(t, SerializeAction(e.action))})
	}

	replayed := New(m.Deployment())
	for _, s := range log {
		action, err := DeserializeAction(s.actionType, s.value)
		require.NoError(t, err)

		_, err = replayed.Apply(s.call, action)
		require.NoError(t, err)
	}

	require.Equal(t, m.ChallengeInfo(), replayed.ChallengeInfo())
	require.Equal(t, m.Participants(), replayed.Participants())
}
