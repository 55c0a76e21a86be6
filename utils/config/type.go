package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：文件优先于MongoDB，MongoDB数据支持本地缓存
type InputPath struct {
	DB        string   `yaml:"db"`                   // 数据库名
	Col       string   `yaml:"col"`                  // 集合名
	Cache     string   `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.pb
	OnlyCache bool     `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string   `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
	Files     []string `yaml:"files,omitempty"`      // 文件路径列表（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 说明：未指定时使用默认命名规则{数据库名}.{集合名}.pb
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".pb"
}

// Input 模拟器输入数据的配置项
type Input struct {
	URI    string     `yaml:"uri,omitempty"` // MongoDB连接字符串
	Person *InputPath `yaml:"person"`        // 车辆（以person的VehicleAttribute与Home车道位置描述）
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
	// 加速度随机扰动幅度（m/s^2），0表示关闭
	AccNoise float64 `yaml:"acc_noise,omitempty"`
}

// Road 环形道路配置
// 说明：所有车道等长且首尾相接，车道编号从左到右为0..Lanes-1
type Road struct {
	Length    float64 `yaml:"length"`               // 环路长度（米）
	Lanes     int     `yaml:"lanes"`                // 车道数
	LaneWidth float64 `yaml:"lane_width,omitempty"` // 车道宽度（米），默认3.5
	// 各类车辆的限速（m/s），键为车辆类别（CAR/TRUCK），未列出的类别取default
	SpeedLimits map[string]float64 `yaml:"speed_limits"`
	// 禁止变道的车道编号，这些车道两侧的车道线均为实线
	NoLaneChange []int `yaml:"no_lane_change,omitempty"`
}

// Model 驾驶行为模型配置
type Model struct {
	CarFollowing string  `yaml:"car_following,omitempty"` // idm或idmplus，默认idmplus
	Delta        float64 `yaml:"delta,omitempty"`         // 限速遵守系数，默认1.0
	// 覆盖全部车辆的LMRS参数，键为参数ID（如dFree、Tmin、vGain）
	Parameters map[string]float64 `yaml:"parameters,omitempty"`
	// 是否启用社会化交互（礼让、社会化期望速度与尾随压力）
	Social *bool `yaml:"social,omitempty"`
	// 是否允许变道
	LaneChange *bool `yaml:"lane_change,omitempty"`
}

// Output 输出配置
type Output struct {
	// sqlite数据库路径，为空则不输出轨迹
	DB string `yaml:"db,omitempty"`
	// 每多少步输出一次轨迹，默认1
	Interval int32 `yaml:"interval,omitempty"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`   // 输入
	Control Control `yaml:"control"` // 模拟过程控制
	Road    Road    `yaml:"road"`    // 环形道路
	Model   Model   `yaml:"model"`   // 驾驶行为模型
	Output  Output  `yaml:"output"`  // 输出
}
