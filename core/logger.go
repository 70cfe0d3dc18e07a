package core

// Logger is any structured logger the apps report to.
// args may carry an error, extra data (map[string]interface{}) and the Requester of the call.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Requester identifies who triggered a logged operation.
type Requester struct {
	ID   string
	Role string
}
