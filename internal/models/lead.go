// internal/models/lead.go
package models

// PublicQuoteRequest is the body of an unauthenticated lead submission.
type PublicQuoteRequest struct {
	ProfileSlug string `json:"profile_slug"`
	Postcode    string `json:"postcode"`
	ServiceType string `json:"service_type"`
	Notes       string `json:"notes,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// AgentQuoteRequest is the body of an authenticated machine-to-machine
// lead submission.
type AgentQuoteRequest struct {
	CompanyID string        `json:"company_id"`
	Customer  AgentCustomer `json:"customer"`
	Job       AgentJob      `json:"job"`
	Source    *AgentSource  `json:"source,omitempty"`
}

type AgentCustomer struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PostcodeFull string `json:"postcode_full"`
}

type AgentJob struct {
	Description string `json:"description"`
}

type AgentSource struct {
	AgentName string `json:"agent_name,omitempty"`
	AgentRef  string `json:"agent_ref,omitempty"`
}

// CompanySummary is the company block embedded in a successful agent
// submission response.
type CompanySummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
}

// AgentQuoteResult is the success response of the agent entry point. A
// deduped result carries Message and the original lead ID; a fresh write
// carries Company and Timestamp instead.
type AgentQuoteResult struct {
	Ok        bool            `json:"ok"`
	Deduped   bool            `json:"deduped"`
	LeadID    string          `json:"lead_id"`
	Message   string          `json:"message,omitempty"`
	Company   *CompanySummary `json:"company,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}
