// 随机数引擎，包装了golang.org/x/exp/rand，提供了驾驶员异质性采样所需的分布
package randengine

import (
	"flag"
	"log"
	"math"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 说明：非线程安全，每辆车持有独立的引擎
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子，实际种子为seed加上命令行参数rand.seed_offset
// 说明：车辆以自身ID为种子，保证同一输入下的结果可复现
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Triangular 三角分布随机数
// 功能：在[min, max]上按众数mode生成三角分布随机数
// 算法说明：逆变换采样，u<(mode-min)/(max-min)时取min+sqrt(u*(max-min)*(mode-min))，
// 否则取max-sqrt((1-u)*(max-min)*(max-mode))
// 说明：要求min<=mode<=max，min==max时返回min
func (e *Engine) Triangular(min, mode, max float64) float64 {
	if !(min <= mode && mode <= max) {
		log.Panicf("randengine: Triangular: invalid (min=%f, mode=%f, max=%f)", min, mode, max)
	}
	if min == max {
		return min
	}
	u := e.Float64()
	width := max - min
	if u < (mode-min)/width {
		return min + math.Sqrt(u*width*(mode-min))
	}
	return max - math.Sqrt((1-u)*width*(max-mode))
}

// LogNormal 对数正态分布随机数
// 参数：mu-对数均值，sigma-对数标准差
func (e *Engine) LogNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*e.NormFloat64())
}

// LogNormalMeanStd 以分布本身的均值与标准差生成对数正态分布随机数
// 说明：mean必须为正
func (e *Engine) LogNormalMeanStd(mean, std float64) float64 {
	if !(mean > 0) {
		log.Panicf("randengine: LogNormalMeanStd: mean must be positive, got %f", mean)
	}
	sigma2 := math.Log(1 + std*std/(mean*mean))
	return e.LogNormal(math.Log(mean)-sigma2/2, math.Sqrt(sigma2))
}

// Noise [-1, 1]内截断的正态扰动，标准差0.5
func (e *Engine) Noise() float64 {
	return max(-1, min(1, .5*e.NormFloat64()))
}
