package input

import (
	"fmt"
	"os"

	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
)

// checkPerson 检查车辆数据的有效性
// 功能：检查person是否描述了环路上的一辆车
// 参数：p-person数据，road-补全默认值后的道路配置
// 返回：数据无效时返回原因
// 说明：车辆必须有VehicleAttribute，初始位置为Home.LanePosition，车道ID即车道编号
func checkPerson(p *personv2.Person, road config.Road) error {
	if p.VehicleAttribute == nil {
		return fmt.Errorf("person %d has no vehicle attribute", p.Id)
	}
	if p.Home == nil || p.Home.LanePosition == nil {
		return fmt.Errorf("person %d has no home lane position", p.Id)
	}
	pos := p.Home.LanePosition
	if pos.LaneId < 0 || int(pos.LaneId) >= road.Lanes {
		return fmt.Errorf("person %d is on lane %d, but the ring has %d lanes", p.Id, pos.LaneId, road.Lanes)
	}
	if pos.S < 0 || pos.S >= road.Length {
		return fmt.Errorf("person %d at s=%v is out of ring [0, %v)", p.Id, pos.S, road.Length)
	}
	return nil
}

// checkDuplicatedIDs 检查ID是否重复
func checkDuplicatedIDs(persons []*personv2.Person) error {
	ids := make(map[int32]struct{}, len(persons))
	for _, p := range persons {
		if _, ok := ids[p.Id]; ok {
			return fmt.Errorf("persons have duplicated ids %d, please check data", p.Id)
		}
		ids[p.Id] = struct{}{}
	}
	return nil
}

// preCheckCache 预检查缓存目录
// 返回：true表示启用缓存，false表示禁用缓存
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		log.Info("disable input cache")
		return false
	}
	if stat, err := os.Stat(cacheDir); err == nil && stat.IsDir() {
		log.Infof("enable input cache at %s", cacheDir)
		return true
	}
	log.Errorf("disable input cache because invalid dir %s (not exist or file)", cacheDir)
	return false
}
