package handler

import "github.com/literaryvoice/literary-voice/internal/core/domain"

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type deductRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Action string `json:"action" validate:"required"`
}

type addCreditsRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Amount   int64  `json:"amount"    validate:"required,gt=0"`
	AdminKey string `json:"admin_key" validate:"required"`
}

type signupResponse struct {
	APIKey  string `json:"api_key"`
	Credits int64  `json:"credits"`
	Message string `json:"message"`
}

type loginResponse struct {
	APIKey  string `json:"api_key"`
	Token   string `json:"token"`
	Credits int64  `json:"credits"`
	Message string `json:"message"`
}

type balanceResponse struct {
	Credits int64 `json:"credits"`
}

type creditsResponse struct {
	Credits int64  `json:"credits"`
	Message string `json:"message"`
}

type transactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type errorResponse struct {
	Error string `json:"error"`
}
