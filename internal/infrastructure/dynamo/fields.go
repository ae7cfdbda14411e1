package dynamo

// Attribute and index names shared by bootstrap and the repositories.
const (
	attrUserID    = "user_id"
	attrUsername  = "username"
	attrEmail     = "email"
	attrArticleID = "article_id"
	attrAuthorID  = "author_id"
	attrIsPublic  = "is_public"
	attrCreatedAt = "created_at"
	attrAuditID   = "audit_id"
	attrTimestamp = "timestamp"

	indexUsername          = "username-index"
	indexEmail             = "email-index"
	indexAuthorCreated     = "author_id-created_at-index"
	indexUsernameTimestamp = "username-timestamp-index"
)
