/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

MONEY IN JSON:
  All money figures travel as decimal strings ("79390.4"), never JSON
  numbers. A float on the wire would re-introduce exactly the drift the
  engine's decimal arithmetic exists to prevent.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - engine/aggregate.go: The Summary these DTOs render
*/
package api

import (
	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/store"
)

// =============================================================================
// SUBJECTS AND CLIENTS
// =============================================================================

// SubjectDTO represents an employee/candidate in API responses.
type SubjectDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email,omitempty"`
	WorkingDaysPerYear int    `json:"working_days_per_year"`
	HoursPerDay        int    `json:"hours_per_day"`
}

func subjectDTO(s store.Subject) SubjectDTO {
	return SubjectDTO{
		ID:                 string(s.ID),
		Name:               s.Name,
		Email:              s.Email,
		WorkingDaysPerYear: s.Schedule.WorkingDaysPerYear,
		HoursPerDay:        s.Schedule.HoursPerDay,
	}
}

// ClientDTO represents a billed organization.
type ClientDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// =============================================================================
// ENGAGEMENTS
// =============================================================================

// MoneyDTO is an amount/currency pair with the amount as a decimal string.
type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func moneyDTO(m engine.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount.String(), Currency: string(m.Currency)}
}

// RateFigureDTO is an amount with its cadence, as entered.
type RateFigureDTO struct {
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	PeriodType string `json:"period_type"`
}

// FeeDTO mirrors engine.FeeSpec.
type FeeDTO struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
}

// CreateEngagementRequest creates either engagement kind. Compensation is
// always required; billing for timesheet, fee or accrual for placement.
type CreateEngagementRequest struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subject_id"`
	CostObjectID string `json:"cost_object_id"`
	ClientID     string `json:"client_id"`
	Kind         string `json:"kind"`

	Compensation RateFigureDTO  `json:"compensation"`
	Billing      *RateFigureDTO `json:"billing,omitempty"`

	PlacementClass string    `json:"placement_class,omitempty"`
	Fee            *FeeDTO   `json:"fee,omitempty"`
	Accrual        *MoneyDTO `json:"accrual,omitempty"`
}

// EngagementDTO is the stored engagement echoed back.
type EngagementDTO struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subject_id"`
	CostObjectID string `json:"cost_object_id"`
	ClientID     string `json:"client_id"`
	Kind         string `json:"kind"`

	Compensation RateFigureDTO  `json:"compensation"`
	Billing      *RateFigureDTO `json:"billing,omitempty"`

	PlacementClass string    `json:"placement_class,omitempty"`
	Fee            *FeeDTO   `json:"fee,omitempty"`
	Accrual        *MoneyDTO `json:"accrual,omitempty"`
}

func engagementDTO(e engine.Engagement) EngagementDTO {
	dto := EngagementDTO{
		ID:           string(e.ID),
		SubjectID:    string(e.SubjectID),
		CostObjectID: string(e.CostObjectID),
		ClientID:     string(e.ClientID),
		Kind:         string(e.Kind),
		Compensation: RateFigureDTO{
			Amount:     e.Compensation.Amount.Amount.String(),
			Currency:   string(e.Compensation.Amount.Currency),
			PeriodType: string(e.Compensation.PeriodType),
		},
	}
	switch e.Kind {
	case engine.KindPlacement:
		dto.PlacementClass = string(e.PlacementClass)
		if e.PlacementClass == engine.PlacementInternal {
			a := moneyDTO(e.AccrualAmount)
			dto.Accrual = &a
		} else {
			dto.Fee = &FeeDTO{
				Type:     string(e.Fee.Type),
				Value:    e.Fee.Value.String(),
				Currency: string(e.Fee.Currency),
			}
		}
	default:
		dto.Billing = &RateFigureDTO{
			Amount:     e.Billing.Amount.Amount.String(),
			Currency:   string(e.Billing.Amount.Currency),
			PeriodType: string(e.Billing.PeriodType),
		}
	}
	return dto
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AllocationDTO is one slice of a day's reported time.
type AllocationDTO struct {
	CostObjectID string `json:"cost_object_id"`
	Hours        string `json:"hours"`
	Note         string `json:"note,omitempty"`
}

// CreateAttendanceRequest records one subject-day. Hours are decimal
// strings; the split need not sum to any fixed daily total.
type CreateAttendanceRequest struct {
	SubjectID   string          `json:"subject_id"`
	Date        string          `json:"date"`
	Approved    bool            `json:"approved"`
	Allocations []AllocationDTO `json:"allocations"`
}

// AttendanceDTO echoes a stored attendance record.
type AttendanceDTO struct {
	ID          string          `json:"id"`
	SubjectID   string          `json:"subject_id"`
	Date        string          `json:"date"`
	Approved    bool            `json:"approved"`
	Allocations []AllocationDTO `json:"allocations"`
}

func attendanceDTO(rec store.AttendanceRecord) AttendanceDTO {
	allocs := make([]AllocationDTO, len(rec.Entry.Allocations))
	for i, a := range rec.Entry.Allocations {
		allocs[i] = AllocationDTO{
			CostObjectID: string(a.CostObjectID),
			Hours:        a.Hours.String(),
			Note:         a.Note,
		}
	}
	return AttendanceDTO{
		ID:          rec.ID,
		SubjectID:   string(rec.Entry.SubjectID),
		Date:        rec.Entry.Date.String(),
		Approved:    rec.Entry.Approved,
		Allocations: allocs,
	}
}

// =============================================================================
// FINANCIAL SUMMARIES
// =============================================================================

// FiguresDTO is a revenue/cost/profit triple, decimal strings in the base
// currency.
type FiguresDTO struct {
	Revenue string `json:"revenue"`
	Cost    string `json:"cost"`
	Profit  string `json:"profit"`
}

func figuresDTO(f engine.Figures) FiguresDTO {
	return FiguresDTO{
		Revenue: f.Revenue.Amount.String(),
		Cost:    f.Cost.Amount.String(),
		Profit:  f.Profit.Amount.String(),
	}
}

// SubjectFiguresDTO adds attributed hours.
type SubjectFiguresDTO struct {
	FiguresDTO
	Hours string `json:"hours"`
}

// LineItemDTO is one engagement's contribution (drill-down/export).
type LineItemDTO struct {
	EngagementID string     `json:"engagement_id"`
	SubjectID    string     `json:"subject_id"`
	CostObjectID string     `json:"cost_object_id"`
	ClientID     string     `json:"client_id"`
	Kind         string     `json:"kind"`
	Hours        string     `json:"hours"`
	Figures      FiguresDTO `json:"figures"`
}

// SummaryDTO is the aggregation result tree.
type SummaryDTO struct {
	BaseCurrency string                       `json:"base_currency"`
	WindowStart  string                       `json:"window_start"`
	WindowEnd    string                       `json:"window_end"`
	BySubject    map[string]SubjectFiguresDTO `json:"by_subject"`
	ByCostObject map[string]FiguresDTO        `json:"by_cost_object"`
	ByClient     map[string]FiguresDTO        `json:"by_client"`
	Total        FiguresDTO                   `json:"total"`
	Lines        []LineItemDTO                `json:"lines,omitempty"`
}

func summaryDTO(s *engine.Summary, includeLines bool) SummaryDTO {
	dto := SummaryDTO{
		BaseCurrency: string(s.Base),
		WindowStart:  s.Window.Start.String(),
		WindowEnd:    s.Window.End.String(),
		BySubject:    make(map[string]SubjectFiguresDTO, len(s.BySubject)),
		ByCostObject: make(map[string]FiguresDTO, len(s.ByCostObject)),
		ByClient:     make(map[string]FiguresDTO, len(s.ByClient)),
		Total:        figuresDTO(s.Total),
	}
	for id, f := range s.BySubject {
		dto.BySubject[string(id)] = SubjectFiguresDTO{
			FiguresDTO: figuresDTO(f.Figures),
			Hours:      f.Hours.String(),
		}
	}
	for id, f := range s.ByCostObject {
		dto.ByCostObject[string(id)] = figuresDTO(f)
	}
	for id, f := range s.ByClient {
		dto.ByClient[string(id)] = figuresDTO(f)
	}
	if includeLines {
		dto.Lines = make([]LineItemDTO, len(s.Lines))
		for i, l := range s.Lines {
			dto.Lines[i] = LineItemDTO{
				EngagementID: string(l.EngagementID),
				SubjectID:    string(l.SubjectID),
				CostObjectID: string(l.CostObjectID),
				ClientID:     string(l.ClientID),
				Kind:         string(l.Kind),
				Hours:        l.Hours.String(),
				Figures:      figuresDTO(l.Figures),
			}
		}
	}
	return dto
}

// HoursDTO answers the per-subject hours query.
type HoursDTO struct {
	SubjectID    string `json:"subject_id"`
	CostObjectID string `json:"cost_object_id,omitempty"`
	WindowStart  string `json:"window_start"`
	WindowEnd    string `json:"window_end"`
	Hours        string `json:"hours"`
}

// ScenarioDTO describes a loadable demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
