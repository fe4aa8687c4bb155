package errors

import "fmt"

// Common error wrapping patterns used throughout the codebase

// WrapLoadError wraps a go/packages failure for a single package
func WrapLoadError(pkgPath string, loc SourceLocation, cause error) *LoadError {
	return &LoadError{
		BaseError: Wrap(LoadErrorCode, fmt.Sprintf("failed to load package '%s'", pkgPath), cause).
			WithLocation(loc).
			WithSuggestion("Fix the compile error, generated files are rewritten once the package type-checks"),
		Package: pkgPath,
	}
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(pkgPath, targetFile, stage string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:  Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", targetFile), cause),
		Package:    pkgPath,
		TargetFile: targetFile,
		Stage:      stage,
	}
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:  Wrap(TemplateErrorCode, fmt.Sprintf("failed to %s template '%s'", operation, templateName), cause),
		TargetFile: templateName,
		Stage:      operation,
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}
