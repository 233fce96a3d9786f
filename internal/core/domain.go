package core

import (
	"errors"
	"strings"
)

const (
	Fixed    CommitmentType = "Fixo"
	Variable CommitmentType = "Variável"
	Card     CommitmentType = "Cartão"
)

type (
	CommitmentType string

	// Commitment is a recurring or one-time financial obligation: a bill,
	// a fixed monthly cost, or a credit-card installment purchase.
	Commitment struct {
		RowIndex    int
		Description string
		Category    string
		Amount      Money
		DueDate     string // DD/MM/YYYY
		PaymentDate string // DD/MM/YYYY, empty while pending

		Type CommitmentType

		// Card-type fields. Installment is 1-based.
		CardName          string
		Installment       int
		TotalInstallments int
	}

	Expense struct {
		RowIndex    int
		Description string
		Category    string
		Amount      Money
		PaymentDate string // DD/MM/YYYY
	}

	Income struct {
		RowIndex     int
		Description  string
		Category     string
		Amount       Money
		ExpectedDate string // DD/MM/YYYY
		ReceivedDate string // DD/MM/YYYY, empty while pending
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDueDate     = errors.New("empty due date")
	ErrEmptyCardName    = errors.New("empty card name")
	ErrBadInstallment   = errors.New("invalid installment numbers")
)

// Pending reports whether the commitment has not been paid yet.
func (c Commitment) Pending() bool {
	return strings.TrimSpace(c.PaymentDate) == ""
}

// Settled reports whether the commitment has a payment date.
func (c Commitment) Settled() bool {
	return !c.Pending()
}

// Received reports whether the income has a received date.
func (i Income) Received() bool {
	return strings.TrimSpace(i.ReceivedDate) != ""
}

func (t CommitmentType) Valid() bool {
	switch t {
	case Fixed, Variable, Card:
		return true
	}
	return false
}

func (c Commitment) Validate() error {
	if len(strings.TrimSpace(c.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(c.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.DueDate) == "" {
		return ErrEmptyDueDate
	}
	if !c.Type.Valid() {
		return errors.New("invalid commitment type")
	}
	if c.Type == Card {
		if strings.TrimSpace(c.CardName) == "" {
			return ErrEmptyCardName
		}
		if c.Installment < 1 || c.TotalInstallments < 1 || c.Installment > c.TotalInstallments {
			return ErrBadInstallment
		}
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.PaymentDate) == "" {
		return errors.New("empty payment date")
	}
	return nil
}

// Validate checks an income before it reaches the backend. Category is
// optional: incomes never feed the category totals.
func (i Income) Validate() error {
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.ExpectedDate) == "" {
		return errors.New("empty expected date")
	}
	return nil
}
