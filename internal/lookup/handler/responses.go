package handler

import (
	"time"

	"amlgen/internal/generator/models"
	"amlgen/internal/lookup/service"
	"amlgen/pkg/money"
)

type UserResponse struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Occupation   string  `json:"occupation"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	AnnualIncome int64   `json:"annual_income"`
	RiskScore    float64 `json:"risk_score"`
	JoinedDate   string  `json:"joined_date"`
	IsPEP        bool    `json:"is_pep"`
}

// Amounts are strings so no precision is lost to JSON numbers.
type TransactionResponse struct {
	TxnID      string `json:"txn_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Timestamp  string `json:"timestamp"`
	TxnType    string `json:"txn_type"`
}

type AlertResponse struct {
	AlertID       string `json:"alert_id"`
	UserID        string `json:"user_id"`
	TriggerReason string `json:"trigger_reason"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	Severity      string `json:"severity"`
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Count  int             `json:"count"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

type CaseFileResponse struct {
	Alert        AlertResponse         `json:"alert"`
	User         UserResponse          `json:"user"`
	Alerts       []AlertResponse       `json:"alerts"`
	Transactions []TransactionResponse `json:"transactions"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		UserID:       u.ID.String(),
		Name:         u.Name,
		Occupation:   string(u.Occupation),
		Email:        u.Email,
		Phone:        u.Phone,
		Address:      u.Address,
		AnnualIncome: u.AnnualIncome,
		RiskScore:    u.RiskScore,
		JoinedDate:   u.JoinedDate.Format(models.DateLayout),
		IsPEP:        u.IsPEP,
	}
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		TxnID:      t.ID.String(),
		SenderID:   t.SenderID.String(),
		ReceiverID: t.ReceiverID.String(),
		Amount:     money.Format(t.Amount),
		Currency:   t.Currency,
		Timestamp:  t.Timestamp.UTC().Format(time.RFC3339),
		TxnType:    string(t.Type),
	}
}

func toAlertResponse(a *models.Alert) AlertResponse {
	return AlertResponse{
		AlertID:       a.ID.String(),
		UserID:        a.UserID.String(),
		TriggerReason: string(a.Reason),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		Severity:      string(a.Severity),
	}
}

func toAlertResponses(alerts []models.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, toAlertResponse(&alerts[i]))
	}
	return out
}

func toTransactionResponses(txns []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toAlertListResponse(alerts []models.Alert) AlertListResponse {
	return AlertListResponse{Alerts: toAlertResponses(alerts), Count: len(alerts)}
}

func toTransactionListResponse(txns []models.Transaction) TransactionListResponse {
	return TransactionListResponse{Transactions: toTransactionResponses(txns), Count: len(txns)}
}

func toCaseFileResponse(f *service.CaseFile) CaseFileResponse {
	return CaseFileResponse{
		Alert:        toAlertResponse(&f.Alert),
		User:         toUserResponse(&f.User),
		Alerts:       toAlertResponses(f.Alerts),
		Transactions: toTransactionResponses(f.Transactions),
	}
}
