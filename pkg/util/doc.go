// Package util provides shared helpers for safe file-path validation and
// log-body truncation used across fakerest packages.
//
//   - SafeFilePath / SafeFilePathAllowAbsolute reject path-traversal attempts
//   - TruncateBody caps response bodies for safe logging
package util
