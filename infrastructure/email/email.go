package email

// Message is one outbound email.
type Message struct {
	ToName      string
	ToAddress   string
	Subject     string
	TextContent string
	HTMLContent string
}

// Sender delivers reminder emails. Implementations log and return delivery
// errors; callers decide whether to keep going (the reminder jobs do).
type Sender interface {
	Send(msg Message) error
}
