package game

import (
	"reflect"
	"testing"

	"carnival/internal/types"
)

func TestRecordRoundTrip(t *testing.T) {
	states := []GameState{
		{ID: "ducks"},
		{ID: "ducks", History: []types.PlayResult{}},
		{ID: "ducks", History: []types.PlayResult{
			{Name: "Duck Pond", PlayerID: "alice", Winner: true, Level: 1, PrizeLevel: types.PrizeSmall, Reward: "sticker"},
			{Name: "Duck Pond", PlayerID: "bob", Level: 0},
		}},
	}
	for _, s := range states {
		if got := FromRecord(ToRecord(s)); !reflect.DeepEqual(got, s) {
			t.Errorf("FromRecord(ToRecord(%+v)) = %+v", s, got)
		}
	}
}

func TestRecordDoesNotAlias(t *testing.T) {
	s := GameState{ID: "ducks", History: []types.PlayResult{{PlayerID: "alice"}}}
	r := ToRecord(s)
	r.Results[0].PlayerID = "mallory"
	if s.History[0].PlayerID != "alice" {
		t.Error("ToRecord shares the history slice")
	}
	back := FromRecord(r)
	r.Results[0].PlayerID = "eve"
	if back.History[0].PlayerID != "mallory" {
		t.Error("FromRecord shares the results slice")
	}
}
