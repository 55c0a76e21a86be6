package task

import (
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/clock"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/output"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/input"
	"gopkg.in/yaml.v2"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理时钟、车道与车辆管理器、配置与轨迹输出
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理与syncer、其他服务的交互，为nil时不对外提供服务
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	serving        bool
	// 缓存文件夹
	cacheDir string

	// Lane管理器
	laneManager *lane.LaneManager
	// Vehicle管理器
	vehicleManager *vehicle.VehicleManager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 轨迹输出，未配置时为nil
	output *output.Writer

	// 用于初始化的输入
	initRes *input.Input
}

// NewContext 创建新的仿真任务上下文
// 参数：
//   - job: 任务名称
//   - cacheDir: 缓存目录
//   - c: 配置对象
//   - sidecar: sidecar实例，可以为nil
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例，配置非法时panic
// 算法说明：
// 1. 检查配置并生成运行时配置
// 2. 初始化时钟，下载车辆数据
// 3. 创建车道与车辆管理器并注册RPC服务
// 4. 启动sidecar服务（如果需要）
func NewContext(
	job string,
	cacheDir string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) *Context {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("invalid config: %v", err)
	}
	ctx := &Context{
		job:            job,
		cacheDir:       cacheDir,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  rc,
	}
	ctx.clock = clock.New(c.Control.Step)

	// 下载所有模拟器启动所需的数据
	ctx.initRes = input.Init(rc, ctx.cacheDir)

	ctx.laneManager = lane.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		ctx.vehicleManager.Register(ctx.sidecar)
		// sidecar协程，用于提供gRPC服务
		if startSidecarServe {
			ctx.serving = true
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx
}

func (ctx *Context) GetInput() *input.Input                 { return ctx.initRes }
func (ctx *Context) Clock() *clock.Clock                    { return ctx.clock }
func (ctx *Context) LaneManager() entity.ILaneManager       { return ctx.laneManager }
func (ctx *Context) VehicleManager() entity.IVehicleManager { return ctx.vehicleManager }
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig   { return ctx.runtimeConfig }

// Init 构建环路与车辆，打开轨迹输出
func (ctx *Context) Init() {
	ctx.clock.Init()

	road := ctx.runtimeConfig.Road
	persons := ctx.initRes.Persons.Persons
	log.Infof("Ring: %.1fm x %d lanes", road.Length, road.Lanes)
	log.Infof("Vehicle: %v", len(persons))

	ctx.laneManager.Init(road) // 先完成lane的所有初始化
	ctx.vehicleManager.Init(persons, ctx.laneManager)

	if path := ctx.runtimeConfig.All.Output.DB; path != "" {
		data, err := yaml.Marshal(ctx.runtimeConfig.All)
		if err != nil {
			log.Panicf("failed to marshal config: %v", err)
		}
		if ctx.output, err = output.Open(path, ctx.runtimeConfig.OutputInterval, string(data), len(persons)); err != nil {
			log.Panicf("failed to open output: %v", err)
		}
	}
}

// Close 关闭轨迹输出与sidecar
func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	if ctx.output != nil {
		if err := ctx.output.Close(); err != nil {
			log.Errorf("failed to close output: %v", err)
		}
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		if ctx.serving {
			// wait for graceful stop
			<-ctx.sidecarCloseCh
		}
	}
	ctx.closed.Store(true)
}
