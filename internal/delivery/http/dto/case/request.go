package casehttp

type CreateCaseRequest struct {
	Quantity    uint64 `json:"quantity"`
	CaseDetails string `json:"case_details"`
}
