package world

import "fmt"

// CityBudget is the treasury and the per-class tax rates. Monthly figures are
// the latest computed run rates, kept for the observation snapshot.
type CityBudget struct {
	Treasury float64

	TaxResidential float64
	TaxCommercial  float64
	TaxIndustrial  float64
	TaxOffice      float64

	MonthlyIncome   float64
	MonthlyExpenses float64
}

// ExtendedBudget holds per-department funding multipliers. 1.0 is the baseline;
// raising a department costs proportionally more and stretches its effect.
type ExtendedBudget struct {
	Police     float64
	Fire       float64
	Health     float64
	Education  float64
	Roads      float64
	Parks      float64
	Sanitation float64
}

func defaultExtendedBudget() ExtendedBudget {
	return ExtendedBudget{
		Police: 1, Fire: 1, Health: 1, Education: 1,
		Roads: 1, Parks: 1, Sanitation: 1,
	}
}

// Loan is an outstanding city loan repaid in equal monthly installments.
type Loan struct {
	Principal      float64
	Remaining      float64
	MonthlyPayment float64
	TermMonths     int
	MonthsLeft     int
	InterestRate   float64 // annual
	DaysAccrued    int
}

// Bankruptcy severity, ordered. Transitions are edge-triggered notices.
type BankruptcyLevel int

const (
	SolvencyNormal BankruptcyLevel = iota
	SolvencyWarning
	SolvencyCritical
	SolvencyBankrupt
)

func (l BankruptcyLevel) String() string {
	switch l {
	case SolvencyNormal:
		return "normal"
	case SolvencyWarning:
		return "warning"
	case SolvencyCritical:
		return "critical"
	default:
		return "bankrupt"
	}
}

const (
	solvencyWarningBelow  = 5000.0
	solvencyCriticalBelow = 1000.0
	daysPerMonth          = 30
	maxOutstandingLoans   = 5
)

// takeLoan credits the treasury now and schedules equal monthly repayments
// with simple interest.
func (w *World) takeLoan(amount float64, months int) (ResultCode, string) {
	if amount <= 0 || amount > 500000 {
		return CodeInvalid, "loan amount out of range"
	}
	if months < 6 || months > 120 {
		return CodeInvalid, "loan term out of range"
	}
	if len(w.loans) >= maxOutstandingLoans {
		return CodeInvalid, "too many outstanding loans"
	}
	// Rate climbs with existing debt exposure.
	rate := 0.05 + 0.01*float64(len(w.loans))
	total := amount * (1 + rate*float64(months)/12)
	w.loans = append(w.loans, Loan{
		Principal:      amount,
		Remaining:      total,
		MonthlyPayment: total / float64(months),
		TermMonths:     months,
		MonthsLeft:     months,
		InterestRate:   rate,
	})
	w.budget.Treasury += amount
	return CodeOK, ""
}

// systemEconomy settles taxes, maintenance and loan payments once per in-game
// day, and tracks the solvency ladder. Slow-tick gated; the day boundary is
// detected against the game clock.
func (w *World) systemEconomy() {
	if !w.slow.ShouldRun() {
		return
	}
	if w.clock.Day == w.lastEconomyDay {
		return
	}
	w.lastEconomyDay = w.clock.Day

	income := w.monthlyTaxIncome()
	expenses := w.monthlyExpenses()
	w.budget.MonthlyIncome = income
	w.budget.MonthlyExpenses = expenses
	w.budget.Treasury += (income - expenses) / daysPerMonth

	// Accumulated fares bank daily.
	w.budget.Treasury += w.transit.FareRevenue
	w.transit.FareRevenue = 0

	w.settleLoans()
	w.updateSolvency()
}

// monthlyTaxIncome is the monthly-rate tax take across real citizens, the
// virtual population and business buildings.
func (w *World) monthlyTaxIncome() float64 {
	income := 0.0
	for i := range w.citizens {
		c := &w.citizens[i]
		if c.Alive && c.Work != 0 {
			income += c.Details.Salary * w.budget.TaxResidential
		}
	}
	// Virtual residents contribute at an assumed median salary.
	income += float64(w.vpop.TotalPopulation()) * 500 * w.budget.TaxResidential

	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive || b.ConstructionLeft > 0 {
			continue
		}
		staffing := 1.0
		if slots := b.workerSlots(); slots > 0 {
			staffing += float64(b.Workers) / float64(slots)
		}
		revenue := 120 * float64(b.Level) * staffing
		switch {
		case b.Zone.IsCommercial():
			income += revenue * w.budget.TaxCommercial
		case b.Zone == ZoneIndustrial:
			income += revenue * w.budget.TaxIndustrial
		case b.Zone == ZoneOffice:
			income += revenue * w.budget.TaxOffice
		}
	}
	return income
}

// monthlyExpenses is the monthly-rate cost of roads, services and utilities,
// scaled by department funding.
func (w *World) monthlyExpenses() float64 {
	expenses := 0.0

	roadUpkeep := 0.0
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		if c.Terrain != TerrainRoad {
			continue
		}
		upkeep := roadSpecs[c.Road].Maintenance
		// Degraded roads cost more to keep passable.
		upkeep *= 2 - float64(w.grids.RoadCondition[i])/255
		roadUpkeep += upkeep
	}
	expenses += roadUpkeep * w.extended.Roads

	for _, s := range w.services {
		expenses += serviceSpecs[s.Kind].MonthlyCost * w.departmentEffect(s.Kind)
	}
	for _, u := range w.utilities {
		expenses += utilitySpecs[u.Kind].MonthlyCost
	}
	// Sanitation scales with the built footprint.
	expenses += float64(w.aliveBuildingCount()) * 12 * w.extended.Sanitation
	return expenses
}

// settleLoans accrues each loan one day and pays an installment every 30
// accrued days. Fully paid loans are removed in place.
func (w *World) settleLoans() {
	kept := w.loans[:0]
	for i := range w.loans {
		l := w.loans[i]
		l.DaysAccrued++
		if l.DaysAccrued >= daysPerMonth {
			l.DaysAccrued = 0
			pay := l.MonthlyPayment
			if pay > l.Remaining {
				pay = l.Remaining
			}
			w.budget.Treasury -= pay
			l.Remaining -= pay
			l.MonthsLeft--
		}
		if l.Remaining > 0.01 && l.MonthsLeft > 0 {
			kept = append(kept, l)
		}
	}
	w.loans = kept
}

// updateSolvency walks the bankruptcy ladder from the treasury balance and
// emits a notice only on level changes.
func (w *World) updateSolvency() {
	level := SolvencyNormal
	switch {
	case w.budget.Treasury < 0:
		level = SolvencyBankrupt
	case w.budget.Treasury < solvencyCriticalBelow:
		level = SolvencyCritical
	case w.budget.Treasury < solvencyWarningBelow:
		level = SolvencyWarning
	}
	if level == w.bankruptcy {
		return
	}
	if level > w.bankruptcy {
		w.pushNotice(fmt.Sprintf("treasury %s: balance %.0f", level, w.budget.Treasury))
	} else {
		w.pushNotice(fmt.Sprintf("treasury recovered to %s", level))
	}
	w.bankruptcy = level
}

// pushNotice appends a player-facing notice, bounded so an unread backlog
// cannot grow without limit.
func (w *World) pushNotice(msg string) {
	const maxNotices = 64
	w.notices = append(w.notices, msg)
	if len(w.notices) > maxNotices {
		w.notices = w.notices[len(w.notices)-maxNotices:]
	}
}
