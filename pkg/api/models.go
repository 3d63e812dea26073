package api

import "github.com/netguru/dotty-dns/internal/model"

const (
	localsIdentity = "identity"
	logFieldError  = "err"
)

type CommandRequest struct {
	Command string `json:"command"`
	Domain  string `json:"domain"`
}

type ScanRequest struct {
	Domain string `json:"domain"`
}

type HistoryResponse struct {
	Domain  string                `json:"domain"`
	Entries []*model.HistoryEntry `json:"entries"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
