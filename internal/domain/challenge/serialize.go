package challenge

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/structs"
	"github.com/habitchain/backend/pkg/enum"
	"github.com/mitchellh/mapstructure"
)

var addressType = reflect.TypeOf(common.Address{})

// SerializeAction flattens an action into a map which survives a json round
// trip: integers are written as decimal strings and addresses as hex.
func SerializeAction(a Action) map[string]any {
	value := structs.Map(a)
	for k, v := range value {
		switch t := v.(type) {
		case uint64:
			value[k] = strconv.FormatUint(t, 10)
		case common.Address:
			value[k] = t.Hex()
		}
	}

	return value
}

// DeserializeAction is the inverse of SerializeAction.
func DeserializeAction(actionType string, value map[string]any) (Action, error) {
	t, err := enum.ToEnum[ActionType](actionType)
	if err != nil {
		return nil, err
	}

	var action Action
	switch t {
	case CreateChallengeAction:
		action = &CreateChallenge{}
	case JoinChallengeAction:
		action = &JoinChallenge{}
	case CompleteTaskAction:
		action = &CompleteTask{}
	case WeeklyEliminationAction:
		action = &WeeklyElimination{}
	case DistributeWeeklyRewardsAction:
		action = &DistributeWeeklyRewards{}
	case EndChallengeAction:
		action = &EndChallenge{}
	default:
		return nil, fmt.Errorf("invalid action type %s", actionType)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(stringToUint64Hook, stringToAddressHook),
		Result:     action,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(value); err != nil {
		return nil, err
	}

	return action, nil
}

func stringToUint64Hook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Uint64 {
		return data, nil
	}

	return strconv.ParseUint(data.(string), 10, 64)
}

func stringToAddressHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != addressType {
		return data, nil
	}

	s := data.(string)
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("invalid address %q", s)
	}

	return common.HexToAddress(s), nil
}
