package core

// Logger is any service that can log & report messages.
// args may carry errors, map[string]interface{} extras or a tenant.Tenant.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
