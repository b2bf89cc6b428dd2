package model

// TransactionType classifies an immutable ledger entry.
type TransactionType string

const (
	TransactionCheckIn    TransactionType = "check_in"
	TransactionCheckOut   TransactionType = "check_out"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionTransfer   TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionCheckIn, TransactionCheckOut, TransactionAdjustment, TransactionTransfer:
		return true
	}
	return false
}

// SessionType drives which transaction type AddMovement derives.
type SessionType string

const (
	SessionCheckIn        SessionType = "check_in"
	SessionCheckOut       SessionType = "check_out"
	SessionInventoryCount SessionType = "inventory_count"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionCheckIn, SessionCheckOut, SessionInventoryCount:
		return true
	}
	return false
}

// SessionStatus is the session lifecycle state. Completed and cancelled are terminal.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// LocationType classifies a stock location.
type LocationType string

const (
	LocationMainStorage LocationType = "main_storage"
	LocationOutlet      LocationType = "outlet"
	LocationWarehouse   LocationType = "warehouse"
	LocationOther       LocationType = "other"
)

func (t LocationType) Valid() bool {
	switch t {
	case LocationMainStorage, LocationOutlet, LocationWarehouse, LocationOther:
		return true
	}
	return false
}

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// ReportType is the closed set of report definitions the engine can execute.
type ReportType string

const (
	ReportValuation          ReportType = "valuation"
	ReportLowStock           ReportType = "low_stock"
	ReportTransactionHistory ReportType = "transaction_history"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportValuation, ReportLowStock, ReportTransactionHistory:
		return true
	}
	return false
}
