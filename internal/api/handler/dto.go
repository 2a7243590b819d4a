package handler

// TransactionRequest represents a request to apply a signed movement to an
// account. Fields are pointers so that missing keys and JSON nulls are
// distinguishable from zero values and rejected by the handler.
type TransactionRequest struct {
	Amount      *int64  `json:"amount"`
	Kind        *string `json:"kind"`
	Description *string `json:"description"`
}

// TransactionResponse represents the account snapshot after a committed
// transaction
type TransactionResponse struct {
	Balance int64 `json:"balance"`
	Limit   int64 `json:"limit"`
}

// StatementMovementResponse represents one movement inside a statement
type StatementMovementResponse struct {
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	AppliedAt   string `json:"applied_at"`
}

// StatementResponse represents an account statement in API responses
type StatementResponse struct {
	Balance         int64                       `json:"balance"`
	Limit           int64                       `json:"limit"`
	AsOf            string                      `json:"as_of"`
	RecentMovements []StatementMovementResponse `json:"recent_movements"`
}

// ArchivedMovementResponse represents an archived movement in API responses
type ArchivedMovementResponse struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
	BalanceAfter int64  `json:"balance_after"`
	LimitAfter   int64  `json:"limit_after"`
	RecordedAt   string `json:"recorded_at"`
}

// MovementListResponse represents a list of archived movements in API responses
type MovementListResponse struct {
	Movements []ArchivedMovementResponse `json:"movements"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
