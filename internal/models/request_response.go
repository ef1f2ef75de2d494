package models

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CloseMonthRequest struct {
	Year   int    `json:"year" binding:"required"`
	Month  int    `json:"month" binding:"required,min=1,max=12"`
	Action string `json:"action" binding:"required,oneof=close reopen"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

// ImportStats reports what one SIE import saw and wrote. The first
// three counts come from the parsed file; the inserted counts exclude
// rows skipped as already-imported duplicates.
type ImportStats struct {
	Verifications           int    `json:"verifications"`
	Accounts                int    `json:"accounts"`
	Balances                int    `json:"balances"`
	TransactionsInserted    int    `json:"transactionsInserted"`
	AccountBalancesInserted int    `json:"accountBalancesInserted"`
	Period                  string `json:"period"`
}

type ImportResponse struct {
	Success bool        `json:"success"`
	Stats   ImportStats `json:"stats"`
	Errors  []string    `json:"errors,omitempty"`
}

type MonthlySummariesResponse struct {
	Summaries []MonthlySummary `json:"summaries"`
	Year      int              `json:"year"`
}

type CloseMonthResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AffectedCount int64  `json:"affectedCount"`
}
