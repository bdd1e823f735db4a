package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *Error {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *Error {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

// MissingMetadata reports app metadata fields absent from the metadata source.
func MissingMetadata(app string, fields []string) *Error {
	return New(CategoryConfig, SeverityFatal, "required app metadata missing").
		WithContext("app", app).
		WithContext("fields", fields)
}

func LicenseMissing(path string, cause error) *Error {
	return Wrap(cause, CategoryConfig, SeverityFatal, "license file missing").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *Error {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Synchronization errors

// PathOutsideRoot is a contract violation: a path was used outside the root it must live under.
func PathOutsideRoot(path, root string) *Error {
	return New(CategoryPath, SeverityFatal, "path is outside its root").
		WithContext("path", path).
		WithContext("root", root)
}

// MissingDefinition is recoverable: the page for that model folder is skipped.
func MissingDefinition(path string, cause error) *Error {
	return Wrap(cause, CategoryDefinition, SeverityWarning, "model definition missing").
		WithContext("path", path)
}

func RenderFailed(template string, cause error) *Error {
	return Wrap(cause, CategoryRender, SeverityFatal, "template render failed").
		WithContext("template", template)
}

func FileSystem(operation, path string, cause error) *Error {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

func PublishFailed(stage string, cause error) *Error {
	return Wrap(cause, CategoryPublish, SeverityFatal, "publish failed").
		WithContext("stage", stage)
}

// Internal errors

func InternalError(message string, cause error) *Error {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
