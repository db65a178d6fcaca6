package department

// Topics published on the event bus with the department as payload.
const (
	CreatedTopic = "department.created"
	UpdatedTopic = "department.updated"
	DeletedTopic = "department.deleted"
)
