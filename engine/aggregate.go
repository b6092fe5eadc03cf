/*
aggregate.go - Revenue/cost/profit roll-up across engagements

PURPOSE:
  The aggregator is where the other three components meet. For every
  engagement in the query it prices the window:

    timesheet:  hours x billingRate = revenue
                hours x compRate    = cost
                revenue - cost      = profit

    placement:  fee (external) or accrual - compensation (internal)
                as both revenue and profit; no timesheet cost path

  and rolls the per-engagement figures up by subject, cost object, and
  client, plus a portfolio total.

CONSERVATION INVARIANT:
  total == sum over byClient == sum over line items, EXACTLY. All
  arithmetic happens in the base currency with decimal precision and sums
  are taken before any display-layer rounding, so no drift is possible
  between a per-engagement figure and the roll-ups that include it.

FAILURE POLICY:
  One malformed record fails the whole call. A partial total that silently
  omits a client's engagements is worse than no total.

DETERMINISM:
  The output is a pure function of the input. Engagement order never
  changes any sum (decimal addition is exact, so commutative here), and
  line items are sorted for stable presentation.

SEE ALSO:
  - normalize.go, attribution.go, commission.go: The three legs
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT / OUTPUT TYPES
// =============================================================================

// AggregationInput is the full snapshot an aggregation runs over. The
// engine reads it and nothing else: no store lookups, no clock, no
// globals.
type AggregationInput struct {
	Engagements []Engagement
	Entries     []AttendanceEntry
	Window      Window
	Rates       RateTable
	Schedules   ScheduleSet
}

// Figures is a revenue/cost/profit triple in the base currency.
type Figures struct {
	Revenue Money
	Cost    Money
	Profit  Money
}

func zeroFigures(base Currency) Figures {
	z := Money{Amount: decimal.Zero, Currency: base}
	return Figures{Revenue: z, Cost: z, Profit: z}
}

func (f Figures) add(g Figures) Figures {
	return Figures{
		Revenue: f.Revenue.Add(g.Revenue),
		Cost:    f.Cost.Add(g.Cost),
		Profit:  f.Profit.Add(g.Profit),
	}
}

// SubjectFigures adds the subject's attributed hours to the money triple.
type SubjectFigures struct {
	Figures
	Hours decimal.Decimal
}

// LineItem is one engagement's contribution, kept for drill-down and
// export. Roll-ups are exact sums of these lines.
type LineItem struct {
	EngagementID EngagementID
	SubjectID    SubjectID
	CostObjectID CostObjectID
	ClientID     ClientID
	Kind         EngagementKind
	Hours        decimal.Decimal
	Figures      Figures
}

// Summary is the aggregation result tree. It is derived and ephemeral:
// recomputed fully on every query, never incrementally mutated, so the
// same input always yields the same Summary.
type Summary struct {
	Base   Currency
	Window Window

	BySubject    map[SubjectID]SubjectFigures
	ByCostObject map[CostObjectID]Figures
	ByClient     map[ClientID]Figures
	Total        Figures

	Lines []LineItem
}

// ClientFinancialSummary is the flat per-client view export layers use.
type ClientFinancialSummary struct {
	ClientID     ClientID
	TotalRevenue Money
	TotalProfit  Money
}

// ClientSummaries flattens ByClient, sorted by client ID for stable
// presentation.
func (s *Summary) ClientSummaries() []ClientFinancialSummary {
	out := make([]ClientFinancialSummary, 0, len(s.ByClient))
	for id, f := range s.ByClient {
		out = append(out, ClientFinancialSummary{
			ClientID:     id,
			TotalRevenue: f.Revenue,
			TotalProfit:  f.Profit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// =============================================================================
// FINANCIAL AGGREGATOR
// =============================================================================

// Aggregate prices every engagement over the window and rolls the figures
// up. It returns the first record error it hits, with the whole call
// failed: no partial totals.
func Aggregate(in AggregationInput) (*Summary, error) {
	if err := in.Window.Validate(); err != nil {
		return nil, err
	}

	idx := indexHours(in.Entries, in.Window)

	s := &Summary{
		Base:         in.Rates.Base,
		Window:       in.Window,
		BySubject:    make(map[SubjectID]SubjectFigures),
		ByCostObject: make(map[CostObjectID]Figures),
		ByClient:     make(map[ClientID]Figures),
		Total:        zeroFigures(in.Rates.Base),
		Lines:        make([]LineItem, 0, len(in.Engagements)),
	}

	for _, eng := range in.Engagements {
		line, err := priceEngagement(eng, idx, in.Rates, in.Schedules)
		if err != nil {
			return nil, err
		}
		s.accumulate(line)
	}

	sort.Slice(s.Lines, func(i, j int) bool { return s.Lines[i].EngagementID < s.Lines[j].EngagementID })
	return s, nil
}

func (s *Summary) accumulate(line LineItem) {
	s.Lines = append(s.Lines, line)

	sub, ok := s.BySubject[line.SubjectID]
	if !ok {
		sub = SubjectFigures{Figures: zeroFigures(s.Base)}
	}
	sub.Figures = sub.Figures.add(line.Figures)
	sub.Hours = sub.Hours.Add(line.Hours)
	s.BySubject[line.SubjectID] = sub

	co, ok := s.ByCostObject[line.CostObjectID]
	if !ok {
		co = zeroFigures(s.Base)
	}
	s.ByCostObject[line.CostObjectID] = co.add(line.Figures)

	cl, ok := s.ByClient[line.ClientID]
	if !ok {
		cl = zeroFigures(s.Base)
	}
	s.ByClient[line.ClientID] = cl.add(line.Figures)

	s.Total = s.Total.add(line.Figures)
}

// =============================================================================
// PER-ENGAGEMENT PRICING
// =============================================================================

func priceEngagement(eng Engagement, idx hoursIndex, rates RateTable, schedules ScheduleSet) (LineItem, error) {
	line := LineItem{
		EngagementID: eng.ID,
		SubjectID:    eng.SubjectID,
		CostObjectID: eng.CostObjectID,
		ClientID:     eng.ClientID,
		Kind:         eng.Kind,
		Figures:      zeroFigures(rates.Base),
	}

	switch eng.Kind {
	case KindPlacement:
		fig, err := pricePlacement(eng, rates, schedules)
		if err != nil {
			return LineItem{}, err
		}
		line.Figures = fig
		return line, nil
	default:
		// Timesheet is the common path; unrecognized kinds would have been
		// rejected at intake (see timesheet/placement builders).
		fig, hours, err := priceTimesheet(eng, idx, rates, schedules)
		if err != nil {
			return LineItem{}, err
		}
		line.Figures = fig
		line.Hours = hours
		return line, nil
	}
}

func priceTimesheet(eng Engagement, idx hoursIndex, rates RateTable, schedules ScheduleSet) (Figures, decimal.Decimal, error) {
	schedule := schedules.For(eng.SubjectID)

	billingRate, err := BillingHourlyRate(eng.Billing, rates, schedule)
	if err != nil {
		tagSubject(err, eng.SubjectID)
		return Figures{}, decimal.Zero, err
	}
	compRate, err := CompensationHourlyRate(eng.Compensation, rates, schedule)
	if err != nil {
		return Figures{}, decimal.Zero, err
	}

	// Zero hours is a valid state: the engagement contributes exact zeros
	// and the roll-up invariant is untouched.
	hours := idx.hours(eng.SubjectID, eng.CostObjectID)

	revenue := billingRate.Mul(hours)
	cost := compRate.Mul(hours)
	return Figures{
		Revenue: revenue,
		Cost:    cost,
		Profit:  revenue.Sub(cost),
	}, hours, nil
}

func pricePlacement(eng Engagement, rates RateTable, schedules ScheduleSet) (Figures, error) {
	compInBase, err := rates.Convert(eng.Compensation.Amount)
	if err != nil {
		tagSubject(err, eng.SubjectID)
		return Figures{}, err
	}

	var revenue Money
	switch eng.PlacementClass {
	case PlacementInternal:
		accrual, err := rates.Convert(eng.AccrualAmount)
		if err != nil {
			tagSubject(err, eng.SubjectID)
			return Figures{}, err
		}
		revenue = InternalMargin(accrual, compInBase)
	default:
		revenue, err = Commission(eng.Fee, compInBase, rates)
		if err != nil {
			tagEngagement(err, eng.ID)
			return Figures{}, err
		}
	}

	// Placements have no timesheet cost path: the fee (or accrued margin)
	// is both the revenue and the profit.
	return Figures{
		Revenue: revenue,
		Cost:    Money{Amount: decimal.Zero, Currency: rates.Base},
		Profit:  revenue,
	}, nil
}

func tagEngagement(err error, id EngagementID) {
	switch e := err.(type) {
	case *InvalidCommissionError:
		if e.EngagementID == "" {
			e.EngagementID = id
		}
	case *UnsupportedCommissionTypeError:
		if e.EngagementID == "" {
			e.EngagementID = id
		}
	}
}
