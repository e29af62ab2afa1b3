package core

import (
	"strings"
	"time"
)

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

const (
	DivisionPersonal Division = "personal"
	DivisionOffice   Division = "office"
)

const (
	AccountSavings    AccountType = "savings"
	AccountChecking   AccountType = "checking"
	AccountCash       AccountType = "cash"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
)

const (
	CategorySalary     Category = "salary"
	CategoryBusiness   Category = "business"
	CategoryInvestment Category = "investment"
	CategoryFuel       Category = "fuel"
	CategoryFood       Category = "food"
	CategoryMovie      Category = "movie"
	CategoryMedical    Category = "medical"
	CategoryLoan       Category = "loan"
	CategoryOthers     Category = "others"

	// CategoryTransfer is synthetic: assigned to transfer records, never
	// user-selectable.
	CategoryTransfer Category = "transfer"
)

// EditWindow is how long after creation a transaction stays editable.
const EditWindow = 12 * time.Hour

// MaxDescriptionLen bounds transaction descriptions.
const MaxDescriptionLen = 100

type (
	TransactionType string
	Division        string
	AccountType     string
	Category        string

	// Account owns a balance that only ledger postings may change.
	Account struct {
		ID      string
		Name    string
		Type    AccountType
		Balance Money
	}

	// Transaction is a single ledger event. CreatedAt is set exactly once
	// and drives the edit window; Date is the user-facing logical date and
	// may differ arbitrarily from CreatedAt. AccountID is an optional tag
	// ("" = not tied to an account) and does not imply a posting.
	Transaction struct {
		ID          string
		Type        TransactionType
		Amount      Money
		Category    Category
		Division    Division
		Description string
		Date        time.Time
		CreatedAt   time.Time
		AccountID   string
	}
)

var incomeCategories = []Category{CategorySalary, CategoryBusiness, CategoryInvestment, CategoryOthers}

var expenseCategories = []Category{CategoryFuel, CategoryFood, CategoryMovie, CategoryMedical, CategoryLoan, CategoryOthers}

var accountTypes = []AccountType{AccountSavings, AccountChecking, AccountCash, AccountCredit, AccountInvestment}

// CategoriesFor returns the selectable categories for a transaction type,
// in display order.
func CategoriesFor(t TransactionType) []Category {
	switch t {
	case TypeIncome:
		return append([]Category(nil), incomeCategories...)
	case TypeExpense:
		return append([]Category(nil), expenseCategories...)
	case TypeTransfer:
		return []Category{CategoryTransfer}
	}
	return nil
}

// ValidFor reports whether the category belongs to the type's category set.
func (c Category) ValidFor(t TransactionType) bool {
	for _, valid := range CategoriesFor(t) {
		if c == valid {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

func (d Division) Valid() bool {
	return d == DivisionPersonal || d == DivisionOffice
}

func (a AccountType) Valid() bool {
	for _, valid := range accountTypes {
		if a == valid {
			return true
		}
	}
	return false
}

// WithinEditWindow reports whether a record created at createdAt is still
// editable at now. The boundary is inclusive: at exactly twelve hours the
// edit is allowed.
func WithinEditWindow(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= EditWindow
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("account name is required")
	}
	if !a.Type.Valid() {
		return NewValidationError("unknown account type %q", a.Type)
	}
	if a.Balance.Cents < 0 {
		return NewValidationError("opening balance cannot be negative")
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return NewValidationError("unknown transaction type %q", t.Type)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Category.ValidFor(t.Type) {
		return NewValidationError("category %q is not valid for %s transactions", t.Category, t.Type)
	}
	switch t.Type {
	case TypeTransfer:
		if t.Division != "" {
			return NewValidationError("division does not apply to transfers")
		}
	default:
		if !t.Division.Valid() {
			return NewValidationError("division must be %q or %q", DivisionPersonal, DivisionOffice)
		}
	}
	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description is required")
	}
	if len(t.Description) > MaxDescriptionLen {
		return NewValidationError("description too long (max %d characters)", MaxDescriptionLen)
	}
	if t.Date.IsZero() {
		return NewValidationError("date is required")
	}
	return nil
}

// IsTransfer reports whether the record was produced by a transfer and is
// therefore financially immutable.
func (t Transaction) IsTransfer() bool { return t.Type == TypeTransfer }

// Snapshot is a consistent copy of both ledger collections, handed to
// persistence and to read paths.
type Snapshot struct {
	Accounts     []Account
	Transactions []Transaction
}
