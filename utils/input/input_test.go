package input

import (
	"testing"

	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
)

func newPerson(id, laneID int32, s float64) *personv2.Person {
	return &personv2.Person{
		Id:               id,
		VehicleAttribute: &personv2.VehicleAttribute{Length: 5, Width: 2},
		Home:             &geov2.Position{LanePosition: &geov2.LanePosition{LaneId: laneID, S: s}},
	}
}

func TestCheckPerson(t *testing.T) {
	road := config.Road{Length: 1000, Lanes: 2}
	assert.NoError(t, checkPerson(newPerson(1, 1, 999), road))
	assert.Error(t, checkPerson(newPerson(1, 2, 0), road))
	assert.Error(t, checkPerson(newPerson(1, 0, 1000), road))
	assert.Error(t, checkPerson(newPerson(1, 0, -1), road))

	noAttr := newPerson(1, 0, 0)
	noAttr.VehicleAttribute = nil
	assert.Error(t, checkPerson(noAttr, road))
	noHome := newPerson(1, 0, 0)
	noHome.Home = &geov2.Position{AoiPosition: &geov2.AoiPosition{AoiId: 1}}
	assert.Error(t, checkPerson(noHome, road))
}

func TestCheckDuplicatedIDs(t *testing.T) {
	assert.NoError(t, checkDuplicatedIDs([]*personv2.Person{newPerson(1, 0, 0), newPerson(2, 0, 0)}))
	assert.Error(t, checkDuplicatedIDs([]*personv2.Person{newPerson(1, 0, 0), newPerson(1, 0, 10)}))
}

func TestInitWithoutPersonInput(t *testing.T) {
	rc, err := config.NewRuntimeConfig(config.Config{
		Control: config.Control{Step: config.ControlStep{Total: 1, Interval: 1}},
		Road:    config.Road{Length: 100, Lanes: 1},
	})
	require.NoError(t, err)
	in := Init(rc, "")
	assert.Empty(t, in.Persons.Persons)
	assert.False(t, preCheckCache(t.TempDir()+"/missing"))
	assert.True(t, preCheckCache(t.TempDir()))
}
