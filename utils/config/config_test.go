package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
	"gopkg.in/yaml.v2"
)

const sample = `
input:
  person:
    file: data/persons.pb
control:
  step:
    start: 0
    total: 3600
    interval: 0.5
  acc_noise: 0.1
road:
  length: 2000
  lanes: 3
  speed_limits:
    CAR: 33.3
    TRUCK: 22.2
model:
  car_following: idm
  parameters:
    dFree: 0.4
  social: false
output:
  db: out.db
  interval: 2
`

func parse(t *testing.T, data string) config.Config {
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	return c
}

func TestParseAndResolve(t *testing.T) {
	c := parse(t, sample)
	assert.Equal(t, "data/persons.pb", c.Input.Person.File)

	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rc.C.Step.Interval)
	assert.Equal(t, 0.1, rc.C.AccNoise)
	assert.Equal(t, 3.5, rc.Road.LaneWidth)
	assert.Equal(t, "idm", rc.CarFollowing)
	assert.Equal(t, 1.0, rc.Delta)
	assert.False(t, rc.Social)
	assert.True(t, rc.LaneChange)
	assert.Equal(t, int32(2), rc.OutputInterval)
	assert.Equal(t, 0.4, rc.Parameters["dFree"])

	assert.Equal(t, 33.3, rc.SpeedLimit("CAR"))
	assert.Equal(t, 22.2, rc.SpeedLimit("TRUCK"))
	assert.InDelta(t, 120/3.6, rc.SpeedLimit("BUS"), 1e-9)
}

func TestUnknownFieldRejected(t *testing.T) {
	var c config.Config
	err := yaml.UnmarshalStrict([]byte("road:\n  length: 100\n  curvature: 3\n"), &c)
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	base := func() config.Config {
		c := parse(t, sample)
		return c
	}
	cases := map[string]func(c *config.Config){
		"interval":      func(c *config.Config) { c.Control.Step.Interval = 0 },
		"total":         func(c *config.Config) { c.Control.Step.Total = 0 },
		"noise":         func(c *config.Config) { c.Control.AccNoise = -1 },
		"length":        func(c *config.Config) { c.Road.Length = -5 },
		"lanes":         func(c *config.Config) { c.Road.Lanes = 0 },
		"speed limit":   func(c *config.Config) { c.Road.SpeedLimits["CAR"] = 0 },
		"no lane":       func(c *config.Config) { c.Road.NoLaneChange = []int{3} },
		"car following": func(c *config.Config) { c.Model.CarFollowing = "gipps" },
		"delta":         func(c *config.Config) { c.Model.Delta = -1 },
	}
	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			modify(&c)
			_, err := config.NewRuntimeConfig(c)
			assert.ErrorIs(t, err, config.ErrConfig)
		})
	}
}

func TestInputCachePath(t *testing.T) {
	p := config.InputPath{DB: "sim", Col: "persons"}
	assert.Equal(t, "sim.persons.pb", p.GetCachePath())
	p.Cache = "x.pb"
	assert.Equal(t, "x.pb", p.GetCachePath())
}
