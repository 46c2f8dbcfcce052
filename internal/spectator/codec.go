package spectator

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/gridsnake/model"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names used in the snapshot Struct.
const (
	fieldTick       = "tick"
	fieldWidth      = "width"
	fieldHeight     = "height"
	fieldSnake      = "snake"
	fieldFood       = "food"
	fieldBonus      = "bonus"
	fieldObstacles  = "obstacles"
	fieldScore      = "score"
	fieldFoodEaten  = "food_eaten"
	fieldBonusTimer = "bonus_timer"
	fieldRunning    = "running"
	fieldX          = "x"
	fieldY          = "y"
)

// EncodeSnapshot converts snap into a protobuf Struct.
func EncodeSnapshot(snap model.Snapshot) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldTick:       float64(snap.Tick),
		fieldWidth:      snap.Width,
		fieldHeight:     snap.Height,
		fieldSnake:      positionsToList(snap.Snake),
		fieldFood:       positionToMap(snap.Food.Position),
		fieldBonus:      snap.Food.IsBonus,
		fieldObstacles:  positionsToList(snap.Obstacles),
		fieldScore:      snap.Score,
		fieldFoodEaten:  snap.FoodEaten,
		fieldBonusTimer: snap.BonusTimer,
		fieldRunning:    snap.Running,
	})
}

// DecodeSnapshot is the inverse of EncodeSnapshot. Missing or mistyped fields
// yield ErrMalformedSnapshot.
func DecodeSnapshot(st *structpb.Struct) (model.Snapshot, error) {
	if st == nil {
		return model.Snapshot{}, fmt.Errorf("%w: nil struct", ErrMalformedSnapshot)
	}
	d := decoder{fields: st.GetFields()}

	snap := model.Snapshot{
		Tick:       uint64(d.number(fieldTick)),
		Width:      d.integer(fieldWidth),
		Height:     d.integer(fieldHeight),
		Snake:      d.positions(fieldSnake),
		Food:       model.Food{Position: d.position(fieldFood), IsBonus: d.flag(fieldBonus)},
		Obstacles:  d.positions(fieldObstacles),
		Score:      d.integer(fieldScore),
		FoodEaten:  d.integer(fieldFoodEaten),
		BonusTimer: d.integer(fieldBonusTimer),
		Running:    d.flag(fieldRunning),
	}
	if d.err != nil {
		return model.Snapshot{}, d.err
	}
	return snap, nil
}

func positionToMap(p model.Position) map[string]any {
	return map[string]any{fieldX: p.X, fieldY: p.Y}
}

func positionsToList(ps []model.Position) []any {
	out := make([]any, 0, len(ps))
	for _, p := range ps {
		out = append(out, positionToMap(p))
	}
	return out
}

// decoder records the first error and returns zero values afterwards.
type decoder struct {
	fields map[string]*structpb.Value
	err    error
}

func (d *decoder) fail(key, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: field %q is not a %s", ErrMalformedSnapshot, key, want)
	}
}

func (d *decoder) value(key string) *structpb.Value {
	v, ok := d.fields[key]
	if !ok {
		if d.err == nil {
			d.err = fmt.Errorf("%w: missing field %q", ErrMalformedSnapshot, key)
		}
		return nil
	}
	return v
}

func (d *decoder) number(key string) float64 {
	v := d.value(key)
	if v == nil {
		return 0
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || math.IsNaN(n.NumberValue) || n.NumberValue != math.Trunc(n.NumberValue) {
		d.fail(key, "whole number")
		return 0
	}
	return n.NumberValue
}

func (d *decoder) integer(key string) int {
	return int(d.number(key))
}

func (d *decoder) flag(key string) bool {
	v := d.value(key)
	if v == nil {
		return false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		d.fail(key, "bool")
		return false
	}
	return b.BoolValue
}

func (d *decoder) position(key string) model.Position {
	v := d.value(key)
	if v == nil {
		return model.Position{}
	}
	p, ok := toPosition(v)
	if !ok {
		d.fail(key, "position")
	}
	return p
}

func (d *decoder) positions(key string) []model.Position {
	v := d.value(key)
	if v == nil {
		return nil
	}
	list := v.GetListValue()
	if list == nil {
		d.fail(key, "list")
		return nil
	}
	out := make([]model.Position, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		p, ok := toPosition(item)
		if !ok {
			d.fail(key, "list of positions")
			return nil
		}
		out = append(out, p)
	}
	return out
}

func toPosition(v *structpb.Value) (model.Position, bool) {
	st := v.GetStructValue()
	if st == nil {
		return model.Position{}, false
	}
	x, okX := st.GetFields()[fieldX].GetKind().(*structpb.Value_NumberValue)
	y, okY := st.GetFields()[fieldY].GetKind().(*structpb.Value_NumberValue)
	if !okX || !okY {
		return model.Position{}, false
	}
	return model.Position{X: int(x.NumberValue), Y: int(y.NumberValue)}, true
}
