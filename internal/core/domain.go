package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Inflow   MovementKind = "inflow"
	Outflow  MovementKind = "outflow"
	Reversal MovementKind = "reversal"
)

const (
	CategoryWireTransfer      MovementCategory = "wire_transfer"
	CategoryTaxForm           MovementCategory = "tax_form"
	CategoryStampDuty         MovementCategory = "stamp_duty"
	CategoryAccountFee        MovementCategory = "account_fee"
	CategoryInterest          MovementCategory = "interest"
	CategoryDirectDebit       MovementCategory = "direct_debit"
	CategoryTopUp             MovementCategory = "top_up"
	CategoryBankDraft         MovementCategory = "bank_draft"
	CategoryInstallmentNotice MovementCategory = "installment_notice"
	CategoryOffsetting        MovementCategory = "offsetting"
	CategoryCertifiedCheck    MovementCategory = "certified_check"
	CategorySpecialWire       MovementCategory = "special_wire"
	CategoryReversal          MovementCategory = "reversal"
	CategoryOtherTaxForm      MovementCategory = "other_tax_form"
)

type (
	MovementKind     string
	MovementCategory string

	Date struct {
		time.Time
	}

	// Period identifies a contribution month.
	Period struct {
		Month int
		Year  int
	}

	// Movement is a single cash event on the company account. The meaning of
	// CounterpartyRef follows Kind: a client for inflows, a supplier for
	// outflows and reversals. Commission and RuleVersion are stamped when the
	// movement is created or edited and never recomputed afterwards.
	Movement struct {
		ID                 int64
		Kind               MovementKind
		Category           MovementCategory
		CounterpartyRef    string
		SiteRef            string
		Description        string
		Amount             Money
		Commission         Money
		MovementDate       Date
		DueDate            Date
		Settled            bool
		ReversedMovementID int64
		RuleVersion        int64
		Note               string
		CreatedAt          time.Time
	}
)

var (
	ErrInvalidKind         = errors.New("invalid movement kind")
	ErrInvalidCategory     = errors.New("invalid movement category")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidDayRange     = errors.New("invalid day range")
	ErrInvalidDate         = errors.New("invalid date")
	ErrUnknownComponent    = errors.New("unknown contribution component")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCounterparty   = errors.New("empty counterparty reference")
	ErrEmptyWorker         = errors.New("empty worker reference")
	ErrEmptySite           = errors.New("empty site reference")
	ErrEmptyFund           = errors.New("empty fund name")
	ErrMissingMovementDate = errors.New("settled movement requires a movement date")
	ErrMissingDueDate      = errors.New("unsettled outflow requires a due date")
	ErrMissingReversalLink = errors.New("reversal requires a reversed movement id")
	ErrReversalTarget      = errors.New("cannot reverse a reversal movement")
	ErrHasReversals        = errors.New("movement has reversals referencing it")
	ErrNotFound            = errors.New("record not found")
)

var allCategories = []MovementCategory{
	CategoryWireTransfer, CategoryTaxForm, CategoryStampDuty,
	CategoryAccountFee, CategoryInterest, CategoryDirectDebit,
	CategoryTopUp, CategoryBankDraft, CategoryInstallmentNotice,
	CategoryOffsetting, CategoryCertifiedCheck, CategorySpecialWire,
	CategoryReversal, CategoryOtherTaxForm,
}

// Categories returns every known movement category in stable order.
func Categories() []MovementCategory {
	out := make([]MovementCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c MovementCategory) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (k MovementKind) IsValid() bool {
	switch k {
	case Inflow, Outflow, Reversal:
		return true
	}
	return false
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date was never set.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// SortKey returns a comparable value; empty dates map to a maximal sentinel
// so undated movements sort after every dated one.
func (d Date) SortKey() time.Time {
	if d.IsZero() {
		return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return d.Time
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1900 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// Contains reports whether t falls in the period's calendar month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// PeriodOf returns the period of the given instant.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Validate enforces the per-kind creation rules. These are local checks run
// before any write is attempted; nothing is persisted when they fail.
func (m Movement) Validate() error {
	if !m.Kind.IsValid() {
		return ErrInvalidKind
	}
	if !m.Category.IsValid() {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(m.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(m.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(m.CounterpartyRef) == "" {
		return ErrEmptyCounterparty
	}
	if m.Amount.Cents < 0 || m.Commission.Cents < 0 {
		return ErrInvalidAmount
	}
	switch m.Kind {
	case Reversal:
		if m.ReversedMovementID == 0 {
			return ErrMissingReversalLink
		}
	default:
		if m.Amount.Cents == 0 {
			return ErrInvalidAmount
		}
		if m.ReversedMovementID != 0 {
			return errors.New("only reversals may link a reversed movement")
		}
	}
	if m.Settled && m.MovementDate.IsEmpty() {
		return ErrMissingMovementDate
	}
	if m.Kind == Outflow && !m.Settled && m.DueDate.IsEmpty() {
		return ErrMissingDueDate
	}
	return nil
}

// SignedTotal is the movement's effect on a balance: amount plus commission,
// negative for outflows. A reversal always credits, whatever the original
// movement did.
func (m Movement) SignedTotal() Money {
	total := m.Amount.Cents + m.Commission.Cents
	if m.Kind == Outflow {
		return Money{Cents: -total}
	}
	return Money{Cents: total}
}

// ReferenceDate is the date a movement counts against: the movement date
// when known, the due date otherwise.
func (m Movement) ReferenceDate() Date {
	if !m.MovementDate.IsEmpty() {
		return m.MovementDate
	}
	return m.DueDate
}
