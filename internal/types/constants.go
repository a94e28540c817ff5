package types

const (
	ContextUserKey = "user"
	ContextIDKey   = "id"
)

// NumberTypes lists the accepted values of a contact's number_type.
var NumberTypes = []string{"home", "work", "friend"}
