package world

import "math"

type ClimateZone uint8

const (
	ClimateTemperate ClimateZone = iota
	ClimateArid
	ClimateTropical
	ClimateContinental
)

func (z ClimateZone) String() string {
	switch z {
	case ClimateTemperate:
		return "temperate"
	case ClimateArid:
		return "arid"
	case ClimateTropical:
		return "tropical"
	case ClimateContinental:
		return "continental"
	default:
		return "unknown"
	}
}

type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "spring"
	case SeasonSummer:
		return "summer"
	case SeasonAutumn:
		return "autumn"
	default:
		return "winter"
	}
}

type WeatherCondition uint8

const (
	WeatherClear WeatherCondition = iota
	WeatherCloudy
	WeatherRain
	WeatherSnow
	WeatherStorm
	WeatherHeatwave
	WeatherColdSnap
)

func (c WeatherCondition) String() string {
	switch c {
	case WeatherClear:
		return "clear"
	case WeatherCloudy:
		return "cloudy"
	case WeatherRain:
		return "rain"
	case WeatherSnow:
		return "snow"
	case WeatherStorm:
		return "storm"
	case WeatherHeatwave:
		return "heatwave"
	case WeatherColdSnap:
		return "cold_snap"
	default:
		return "unknown"
	}
}

// climateEnvelope bounds the seasonal temperature curve for a zone.
type climateEnvelope struct {
	WinterMean float64
	SummerMean float64
	RainChance float64
}

var climateEnvelopes = map[ClimateZone]climateEnvelope{
	ClimateTemperate:   {WinterMean: 2, SummerMean: 24, RainChance: 0.30},
	ClimateArid:        {WinterMean: 10, SummerMean: 38, RainChance: 0.05},
	ClimateTropical:    {WinterMean: 22, SummerMean: 31, RainChance: 0.45},
	ClimateContinental: {WinterMean: -12, SummerMean: 26, RainChance: 0.25},
}

// Weather is the current atmospheric state. Temperature in Celsius,
// precipitation and cloud cover in [0,1].
type Weather struct {
	Climate       ClimateZone
	Season        Season
	Temperature   float64
	Precipitation float64
	CloudCover    float64
	Condition     WeatherCondition
}

// WeatherChangeEvent is emitted on season or condition edges for the
// observation snapshot.
type WeatherChangeEvent struct {
	Tick      uint64
	Season    Season
	Condition WeatherCondition
}

// utilityRangeDivisor shrinks utility reach under harsh conditions.
func (w *Weather) utilityRangeDivisor() float64 {
	switch w.Condition {
	case WeatherStorm:
		return 1.5
	case WeatherSnow, WeatherColdSnap:
		return 1.3
	case WeatherHeatwave:
		return 1.2
	default:
		return 1
	}
}

const daysPerSeason = 90

// systemWeather advances temperature along the seasonal envelope with bounded
// noise, evolves precipitation and cloud cover, and derives the condition.
// Edges emit a WeatherChangeEvent and flip the utility dirty bit when the
// range divisor changes.
func (w *World) systemWeather() {
	if !w.slow.ShouldRun() {
		return
	}
	wx := &w.weather
	prevSeason := wx.Season
	prevCondition := wx.Condition
	prevDivisor := wx.utilityRangeDivisor()

	wx.Season = Season((w.clock.Day / daysPerSeason) % 4)

	env := climateEnvelopes[wx.Climate]
	// Sinusoidal annual curve peaking mid-summer.
	yearPhase := float64(w.clock.Day%(4*daysPerSeason)) / float64(4*daysPerSeason)
	mid := (env.WinterMean + env.SummerMean) / 2
	amp := (env.SummerMean - env.WinterMean) / 2
	target := mid - amp*math.Cos(2*math.Pi*yearPhase)
	noise := w.rng.Norm(0, 2)
	wx.Temperature += (target+noise-wx.Temperature) * 0.2

	// Cloud cover random-walks; precipitation follows cover and climate.
	wx.CloudCover = clamp(wx.CloudCover+w.rng.Norm(0, 0.12), 0, 1)
	if wx.CloudCover > 0.6 && w.rng.Chance(env.RainChance) {
		wx.Precipitation = clamp(wx.Precipitation+w.rng.Float64()*0.4, 0, 1)
	} else {
		wx.Precipitation = clamp(wx.Precipitation-0.15, 0, 1)
	}

	wx.Condition = deriveCondition(wx)

	if wx.Season != prevSeason || wx.Condition != prevCondition {
		w.lastWeatherEvent = WeatherChangeEvent{
			Tick:      w.tick,
			Season:    wx.Season,
			Condition: wx.Condition,
		}
	}
	if wx.utilityRangeDivisor() != prevDivisor {
		w.dirtyUtilities = true
	}
}

func deriveCondition(wx *Weather) WeatherCondition {
	switch {
	case wx.Temperature > 35:
		return WeatherHeatwave
	case wx.Temperature < -10:
		return WeatherColdSnap
	case wx.Precipitation > 0.7:
		return WeatherStorm
	case wx.Precipitation > 0.1 && wx.Temperature < 0:
		return WeatherSnow
	case wx.Precipitation > 0.1:
		return WeatherRain
	case wx.CloudCover > 0.5:
		return WeatherCloudy
	default:
		return WeatherClear
	}
}
