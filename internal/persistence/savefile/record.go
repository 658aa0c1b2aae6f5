package savefile

// CurrentVersion is the newest payload schema. The migration registry must
// cover every step from 0 up to this value.
const CurrentVersion uint32 = 3

// NoneIndex is the sentinel for a missing or dangling cross-reference in the
// citizen vector (dead partner, emigrated parent).
const NoneIndex uint32 = ^uint32(0)

// SaveRecord is the flat, schema-full payload: one field per persistable
// resource plus entity vectors. Fields absent in older payloads decode to
// zero values; migration steps then fill real defaults.
type SaveRecord struct {
	Version uint32 `json:"version"`

	Seed       int64  `json:"seed"`
	RngWordPos uint64 `json:"rng_word_pos"`

	Tick            uint64  `json:"tick"`
	Day             int     `json:"day"`
	Hour            float64 `json:"hour"`
	Speed           int     `json:"speed"`
	Paused          bool    `json:"paused"`
	SlowTickPeriod  int     `json:"slow_tick_period"`
	PlayTimeSeconds float64 `json:"play_time_seconds"`
	CityName        string  `json:"city_name"`

	Budget     BudgetRec         `json:"budget"`
	Loans      []LoanRec         `json:"loans,omitempty"`
	Extended   ExtendedBudgetRec `json:"extended_budget"`
	Bankruptcy int               `json:"bankruptcy_level"`

	ZoneDemand ZoneDemandRec `json:"zone_demand"`

	// Grid layers, row-major 256x256.
	Terrain   []uint8   `json:"terrain"`
	RoadKind  []uint8   `json:"road_kind"`
	Zone      []uint8   `json:"zone"`
	Elevation []float32 `json:"elevation"`

	// Scalar grids, row-major 256x256 u8.
	Pollution      []uint8 `json:"pollution,omitempty"`
	Noise          []uint8 `json:"noise,omitempty"`
	LandValue      []uint8 `json:"land_value,omitempty"`
	Crime          []uint8 `json:"crime,omitempty"`
	TrafficDensity []uint8 `json:"traffic_density,omitempty"`
	RoadCondition  []uint8 `json:"road_condition,omitempty"`
	Garbage        []uint8 `json:"garbage,omitempty"`
	Stormwater     []uint8 `json:"stormwater,omitempty"`
	Groundwater    []uint8 `json:"groundwater,omitempty"`
	SnowDepth      []uint8 `json:"snow_depth,omitempty"`

	Segments    []SegmentRec    `json:"segments,omitempty"`
	OneWay      []OneWayRec     `json:"one_way,omitempty"`
	Citizens    []CitizenRec    `json:"citizens,omitempty"`
	Buildings   []BuildingRec   `json:"buildings,omitempty"`
	Utilities   []UtilityRec    `json:"utilities,omitempty"`
	Services    []ServiceRec    `json:"services,omitempty"`
	TransitSys  TransitRec      `json:"transit"`
	Energy      EnergyRec       `json:"energy"`
	Weather     WeatherRec      `json:"weather"`
	Disasters   []DisasterRec   `json:"disasters,omitempty"`
	VirtualPop  VirtualPopRec   `json:"virtual_population"`
	Counters    CountersRec     `json:"counters"`
	MaxCitizens int             `json:"max_real_citizens"`
	Violations  []ViolationsRec `json:"violations,omitempty"`
}

type BudgetRec struct {
	Treasury        float64 `json:"treasury"`
	TaxResidential  float64 `json:"tax_residential"`
	TaxCommercial   float64 `json:"tax_commercial"`
	TaxIndustrial   float64 `json:"tax_industrial"`
	TaxOffice       float64 `json:"tax_office"`
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
}

type LoanRec struct {
	Principal      float64 `json:"principal"`
	Remaining      float64 `json:"remaining"`
	AnnualRate     float64 `json:"annual_rate"`
	TermMonths     int     `json:"term_months"`
	MonthsLeft     int     `json:"months_left"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

type ExtendedBudgetRec struct {
	Police      float64 `json:"police"`
	Fire        float64 `json:"fire"`
	Health      float64 `json:"health"`
	Education   float64 `json:"education"`
	Roads       float64 `json:"roads"`
	Parks       float64 `json:"parks"`
	Sanitation  float64 `json:"sanitation"`
}

type ZoneDemandRec struct {
	Residential float64 `json:"residential"`
	Commercial  float64 `json:"commercial"`
	Industrial  float64 `json:"industrial"`
	Office      float64 `json:"office"`
}

type SegmentRec struct {
	ID     uint32     `json:"id"`
	Kind   uint8      `json:"kind"`
	P0     [2]float64 `json:"p0"`
	P1     [2]float64 `json:"p1"`
	P2     [2]float64 `json:"p2"`
	P3     [2]float64 `json:"p3"`
	Length float64    `json:"length"`
}

type OneWayRec struct {
	SegmentID uint32 `json:"segment_id"`
	Dir       int8   `json:"dir"` // 0 none, 1 forward, -1 reverse
}

type CitizenRec struct {
	Pos      [2]float64 `json:"pos"`
	Vel      [2]float64 `json:"vel"`
	HomeCell [2]int     `json:"home_cell"`
	HomeIdx  uint32     `json:"home_idx"` // index into Buildings, NoneIndex if homeless
	WorkCell [2]int     `json:"work_cell"`
	WorkIdx  uint32     `json:"work_idx"`
	State    uint8      `json:"state"`

	Hunger  float64 `json:"hunger"`
	Energy  float64 `json:"energy"`
	Social  float64 `json:"social"`
	Fun     float64 `json:"fun"`
	Comfort float64 `json:"comfort"`

	Ambition    float64 `json:"ambition"`
	Sociability float64 `json:"sociability"`
	Materialism float64 `json:"materialism"`
	Resilience  float64 `json:"resilience"`

	Age       int     `json:"age"`
	Gender    uint8   `json:"gender"`
	Education uint8   `json:"education"`
	Happiness float64 `json:"happiness"`
	Health    float64 `json:"health"`
	Salary    float64 `json:"salary"`
	Savings   float64 `json:"savings"`

	Partner  uint32   `json:"partner"`
	Parents  []uint32 `json:"parents,omitempty"`
	Children []uint32 `json:"children,omitempty"`

	LodTier   uint8 `json:"lod_tier"`
	Transport uint8 `json:"transport"`

	ActivityTicksLeft int `json:"activity_ticks_left,omitempty"`
}

type BuildingRec struct {
	Cell             [2]int  `json:"cell"`
	Zone             uint8   `json:"zone"`
	Level            int     `json:"level"`
	Capacity         int     `json:"capacity"`
	Occupants        int     `json:"occupants"`
	CommercialSplit  float64 `json:"commercial_split,omitempty"`
	ConstructionLeft int     `json:"construction_left,omitempty"`
	ConstructionTot  int     `json:"construction_total,omitempty"`
}

type UtilityRec struct {
	Cell  [2]int `json:"cell"`
	Kind  uint8  `json:"kind"`
	Range int    `json:"range"`
}

type ServiceRec struct {
	Cell [2]int `json:"cell"`
	Kind uint8  `json:"kind"`
}

type TransitRec struct {
	Stops    []TransitStopRec    `json:"stops,omitempty"`
	Lines    []TransitLineRec    `json:"lines,omitempty"`
	Vehicles []TransitVehicleRec `json:"vehicles,omitempty"`
}

type TransitStopRec struct {
	ID   uint32 `json:"id"`
	Cell [2]int `json:"cell"`
	Mode uint8  `json:"mode"`
}

type TransitLineRec struct {
	ID    uint32   `json:"id"`
	Mode  uint8    `json:"mode"`
	Stops []uint32 `json:"stops"`
}

type TransitVehicleRec struct {
	ID       uint32  `json:"id"`
	Line     uint32  `json:"line"`
	PathIdx  int     `json:"path_idx"`
	Progress float64 `json:"progress"`
	Riders   int     `json:"riders"`
}

type EnergyRec struct {
	BatteryCharge   float64 `json:"battery_charge"`
	BatteryCapacity float64 `json:"battery_capacity"`
	LineEfficiency  float64 `json:"line_efficiency"`
}

type WeatherRec struct {
	ClimateZone   uint8   `json:"climate_zone"`
	Season        uint8   `json:"season"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	CloudCover    float64 `json:"cloud_cover"`
	Condition     uint8   `json:"condition"`
}

type DisasterRec struct {
	Kind      uint8   `json:"kind"`
	Phase     uint8   `json:"phase"`
	Intensity float64 `json:"intensity"`
	HeldTicks int     `json:"held_ticks"`
}

type VirtualPopRec struct {
	Districts []DistrictRec `json:"districts,omitempty"`
}

type DistrictRec struct {
	Name        string  `json:"name"`
	Population  int     `json:"population"`
	Employed    int     `json:"employed"`
	Happiness   float64 `json:"happiness"`
	AgeUnder18  int     `json:"age_under_18"`
	Age18to65   int     `json:"age_18_to_65"`
	AgeOver65   int     `json:"age_over_65"`
	Commuters   int     `json:"commuters"`
	TaxRevenue  float64 `json:"tax_revenue"`
	ServiceNeed float64 `json:"service_need"`
}

type CountersRec struct {
	NextSegment uint32 `json:"next_segment"`
	NextStop    uint32 `json:"next_stop"`
	NextLine    uint32 `json:"next_line"`
	NextVehicle uint32 `json:"next_vehicle"`
}

type ViolationsRec struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
