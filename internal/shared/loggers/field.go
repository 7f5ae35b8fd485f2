package loggers

const (
	FieldApp        = "app"
	FieldComponent  = "component"
	FieldHttpMethod = "http_method"
	FieldHttpPath   = "http_path"
	FieldHttpStatus = "http_status"
	FieldUserAgent  = "user_agent"

	FieldDuration   = "duration"
	FieldRequestID  = "request_id"
	FieldErrorStack = "error_stack"
	FieldErrorCode  = "error_code"

	FieldClientAddress = "client_address"
	FieldAuthUser      = "auth_user"
	FieldNumParticles  = "num_particles"
	FieldCommandLine   = "command_line"
	FieldPID           = "pid"
	FieldExitCode      = "exit_code"
)
