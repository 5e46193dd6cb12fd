// Package version exposes the build version of the streamkit binary.
package version
