// 运动学标量，统一以国际单位制(SI)存储
package unit

import "fmt"

// Length 长度（米）
type Length float64

// Speed 速度（米/秒）
type Speed float64

// Acceleration 加速度（米/秒²）
type Acceleration float64

// Duration 时长（秒）
type Duration float64

const kmPerHourFactor = 3.6 // 1 m/s = 3.6 km/h

// KmPerHour 以千米/小时构造速度
func KmPerHour(v float64) Speed {
	return Speed(v / kmPerHourFactor)
}

// KmPerHour 速度转换为千米/小时
func (v Speed) KmPerHour() float64 {
	return float64(v) * kmPerHourFactor
}

func (l Length) SI() float64       { return float64(l) }
func (v Speed) SI() float64        { return float64(v) }
func (a Acceleration) SI() float64 { return float64(a) }
func (t Duration) SI() float64     { return float64(t) }

// Times 速度乘以时长得到距离
func (v Speed) Times(t Duration) Length {
	return Length(float64(v) * float64(t))
}

// Over 速度除以时长得到加速度
func (v Speed) Over(t Duration) Acceleration {
	return Acceleration(float64(v) / float64(t))
}

// Times 加速度乘以时长得到速度变化量
func (a Acceleration) Times(t Duration) Speed {
	return Speed(float64(a) * float64(t))
}

// Over 距离除以时长得到速度
func (l Length) Over(t Duration) Speed {
	return Speed(float64(l) / float64(t))
}

// OverSpeed 距离除以速度得到时长
func (l Length) OverSpeed(v Speed) Duration {
	return Duration(float64(l) / float64(v))
}

// Interpolate 在两个时长之间按比例线性插值，ratio=0返回from，ratio=1返回to
func Interpolate(from, to Duration, ratio float64) Duration {
	return from + Duration(ratio)*(to-from)
}

func (l Length) String() string       { return fmt.Sprintf("%.3fm", float64(l)) }
func (v Speed) String() string        { return fmt.Sprintf("%.3fm/s", float64(v)) }
func (a Acceleration) String() string { return fmt.Sprintf("%.3fm/s2", float64(a)) }
func (t Duration) String() string     { return fmt.Sprintf("%.3fs", float64(t)) }
