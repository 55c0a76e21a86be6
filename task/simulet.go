package task

import (
	"context"
	"flag"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
)

const (
	SelfName = "city" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 算法说明：
// 1. 心跳日志：定期输出仿真时间、变道次数与总行驶距离
// 2. 车辆准备：生成快照，缓冲变道引起的链表增删
// 3. 车道准备：应用增删并按位置重排（依赖第2步）
// 4. 输出：写入本步开始时的车辆快照，final为true时为结束状态，不受输出间隔限制
func (ctx *Context) prepare(final bool) {
	ctx.vehicleManager.Prepare()
	ctx.laneManager.Prepare()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		stats := ctx.vehicleManager.Stats()
		log.Infof(
			"STEP: %d(%s) remaining: %d, lane changes: %d, distance: %.1fkm",
			ctx.clock.InternalStep, ctx.clock, ctx.clock.Remaining(),
			stats.NumLaneChanges, stats.TravelDistance/1000,
		)
	}

	if ctx.output != nil {
		snapshots := lo.Map(ctx.vehicleManager.Vehicles(), func(v entity.IVehicle, _ int) *entity.VehicleSnapshot {
			return v.Snapshot()
		})
		write := ctx.output.Write
		if final {
			write = ctx.output.WriteFinal
		}
		if err := write(context.Background(), ctx.clock.InternalStep, ctx.clock.T, snapshots); err != nil {
			log.Panicf("failed to write output: %v", err)
		}
	}
}

// update 更新阶段，每步执行一次
func (ctx *Context) update() {
	ctx.vehicleManager.Update(ctx.clock.DT)
}

// Run 运行
// 说明：有sidecar时每步与syncer同步，否则运行到最后一步后退出
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	if ctx.sidecar != nil {
		// init syncer
		ctx.sidecar.Step(false)
	}
	for {
		ctx.prepare(false)
		if ctx.sidecar != nil {
			// 通知准备阶段完成
			log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
			ctx.sidecar.NotifyStepReady()
		}
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		last := ctx.clock.IsLastStep()
		close := last
		if ctx.sidecar != nil {
			close = ctx.sidecar.Step(last)
		}
		ctx.clock.Next()
		if close || ctx.closed.Load() {
			break
		}
	}
	// 最终状态
	ctx.prepare(true)
	log.Infof("engine complete")
	ctx.Close()
}
