package headway_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

func info() headway.Info {
	return headway.Info{
		ID:                  "1",
		GtuType:             entity.GtuTypeCar,
		Length:              4,
		Width:               2,
		DesiredSpeed:        unit.KmPerHour(120),
		FacingSameDirection: true,
		Status:              headway.BrakingLights | headway.Honk,
		Parameters:          parameter.Defaults(),
	}
}

func TestMissingWidth(t *testing.T) {
	for _, w := range []unit.Length{0, -1, unit.Length(math.NaN())} {
		i := info()
		i.Width = w
		_, err := headway.NewMoving(i, 10, 5, 0)
		assert.ErrorIs(t, err, headway.ErrInvalidArgument)
		_, err = headway.NewStatic(i, 10)
		assert.ErrorIs(t, err, headway.ErrInvalidArgument)
		_, err = headway.NewMovingParallel(i, headway.Overlap{}, 5, 0)
		assert.ErrorIs(t, err, headway.ErrInvalidArgument)
		_, err = headway.NewStaticParallel(i, headway.Overlap{})
		assert.ErrorIs(t, err, headway.ErrInvalidArgument)
	}
	i := info()
	i.ID = ""
	_, err := headway.NewStatic(i, 10)
	assert.ErrorIs(t, err, headway.ErrInvalidArgument)
}

func TestMovingHeadway(t *testing.T) {
	h, err := headway.NewMoving(info(), 25, 10, -0.5)
	require.NoError(t, err)
	d, ok := h.Distance()
	assert.True(t, ok)
	assert.Equal(t, unit.Length(25), d)
	_, ok = h.Overlap()
	assert.False(t, ok)
	v, ok := h.Speed()
	assert.True(t, ok)
	assert.Equal(t, unit.Speed(10), v)
	a, ok := h.Acceleration()
	assert.True(t, ok)
	assert.Equal(t, unit.Acceleration(-0.5), a)

	assert.Equal(t, "1", h.ID())
	assert.Equal(t, entity.GtuTypeCar, h.GtuType())
	assert.Equal(t, unit.Length(2), h.Width())
	assert.True(t, h.IsFacingSameDirection())
	assert.True(t, h.IsBrakingLightsOn())
	assert.True(t, h.IsHonking())
	assert.False(t, h.IsLeftTurnIndicatorOn())
	assert.False(t, h.IsRightTurnIndicatorOn())
	assert.False(t, h.IsEmergencyLightsOn())
	assert.False(t, h.IsParallel())
	assert.NotNil(t, h.Parameters())
}

func TestStaticParallelHeadway(t *testing.T) {
	o := headway.Overlap{Front: 1, Overlap: 3, Rear: 1}
	h, err := headway.NewStaticParallel(info(), o)
	require.NoError(t, err)
	assert.True(t, h.IsParallel())
	_, ok := h.Distance()
	assert.False(t, ok)
	got, ok := h.Overlap()
	assert.True(t, ok)
	assert.Equal(t, o, got)
	_, ok = h.Speed()
	assert.False(t, ok)
	_, ok = h.Acceleration()
	assert.False(t, ok)
	assert.Equal(t, unit.Speed(0), h.SpeedOrZero())
	assert.False(t, h.HasKnownKinematics())
}

type signals struct {
	ind  entity.Indicators
	a    unit.Acceleration
	honk bool
}

func (s signals) IndicatorsAt(float64) entity.Indicators   { return s.ind }
func (s signals) AccelerationAt(float64) unit.Acceleration { return s.a }
func (s signals) HonkingAt(float64) bool                   { return s.honk }

func TestCollectStatusFlags(t *testing.T) {
	// 双闪优先于转向灯
	s := headway.CollectStatusFlags(signals{ind: entity.Indicators{Left: true, Hazard: true}}, 0)
	assert.True(t, s.Has(headway.EmergencyLights))
	assert.False(t, s.Has(headway.LeftTurnIndicator))

	s = headway.CollectStatusFlags(signals{ind: entity.Indicators{Right: true}, a: -1, honk: true}, 0)
	assert.Equal(t, headway.RightTurnIndicator|headway.BrakingLights|headway.Honk, s)
	assert.Equal(t, "[BRAKING_LIGHTS,RIGHT_TURNINDICATOR,HONK]", s.String())

	s = headway.CollectStatusFlags(signals{ind: entity.Indicators{Left: true}, a: 0.5}, 0)
	assert.Equal(t, headway.LeftTurnIndicator, s)

	assert.Equal(t, headway.Status(0), headway.CollectStatusFlags(signals{}, 0))
}

type lane struct {
	limits map[entity.GtuType]unit.Speed
}

func (l lane) SpeedLimit(gtuType entity.GtuType) (unit.Speed, error) {
	v, ok := l.limits[gtuType]
	if !ok {
		return 0, errors.New("no speed limit for " + string(gtuType))
	}
	return v, nil
}

type gtu struct {
	gtuType entity.GtuType
	lane    headway.SpeedLimitLane
}

func (g gtu) GtuType() entity.GtuType             { return g.gtuType }
func (g gtu) MaxSpeed() unit.Speed                { return unit.KmPerHour(130) }
func (g gtu) CurrentLane() headway.SpeedLimitLane { return g.lane }

func TestDeriveSpeedLimitInfo(t *testing.T) {
	l := lane{limits: map[entity.GtuType]unit.Speed{entity.GtuTypeCar: unit.KmPerHour(100)}}
	sli, err := headway.DeriveSpeedLimitInfo(gtu{gtuType: entity.GtuTypeCar, lane: l})
	require.NoError(t, err)
	assert.InDelta(t, 100, sli.SpeedLimit.KmPerHour(), 1e-9)
	assert.InDelta(t, 130, sli.MaxVehicleSpeed.KmPerHour(), 1e-9)

	_, err = headway.DeriveSpeedLimitInfo(gtu{gtuType: entity.GtuTypeTruck, lane: l})
	assert.ErrorIs(t, err, headway.ErrSpeedLimit)
	_, err = headway.DeriveSpeedLimitInfo(gtu{gtuType: entity.GtuTypeCar})
	assert.ErrorIs(t, err, headway.ErrSpeedLimit)
}
