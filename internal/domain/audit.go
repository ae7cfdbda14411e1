package domain

import "time"

// AuditLog is an immutable record of an action. Nothing in the auth flow
// reads these back.
type AuditLog struct {
	AuditID      string    `json:"id" dynamodbav:"audit_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Action       string    `json:"action" dynamodbav:"action"`
	ResourceType string    `json:"resource_type" dynamodbav:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty" dynamodbav:"resource_id"`
	Method       string    `json:"method,omitempty" dynamodbav:"method"`
	Path         string    `json:"path,omitempty" dynamodbav:"path"`
	UserAgent    string    `json:"user_agent,omitempty" dynamodbav:"user_agent"`
	IPAddress    string    `json:"ip_address,omitempty" dynamodbav:"ip_address"`
	Timestamp    time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// Audit actions.
const (
	ActionLoginFailed    = "LOGIN_FAILED"
	ActionLoginLocked    = "LOGIN_LOCKED"
	ActionAccountLocked  = "ACCOUNT_LOCKED"
	ActionOTPSent        = "OTP_SENT"
	ActionLoginOTPFailed = "LOGIN_OTP_FAILED"
	ActionLoginSuccess   = "LOGIN_SUCCESS"

	ActionCreateUser = "CREATE_USER"
	ActionListUsers  = "GET_ALL_USER"
	ActionUpdateUser = "UPDATE_USER"
	ActionDeleteUser = "DELETE_USER"

	ActionCreateArticle = "CREATE_ARTICLE"
	ActionListArticles  = "GET_ALL_ARTICLE"
	ActionUpdateArticle = "UPDATE_ARTICLE"
	ActionDeleteArticle = "DELETE_ARTICLE"

	ActionListAuditLogs = "GET_ALL_AUDIT_LOG"
)

// Audit resource types.
const (
	ResourceAuth    = "AUTH"
	ResourceUser    = "USER"
	ResourceArticle = "ARTICLE"
	ResourceAudit   = "AUDIT"
)
