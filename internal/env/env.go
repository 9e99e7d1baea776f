// Package env resolves conandeps inputs from the process environment.
package env

import "os"

// ConanEnv is the variable overriding the conan executable name or path.
const ConanEnv = "CONAN"

const defaultConan = "conan"

// Conan returns the conan executable to invoke.
func Conan() string {
	if exe := os.Getenv(ConanEnv); exe != "" {
		return exe
	}
	return defaultConan
}

// HostBuildType maps the host pipeline's PROFILE variable to the conan
// build_type vocabulary. Unknown or unset profiles map to "".
func HostBuildType() string {
	switch os.Getenv("PROFILE") {
	case "debug":
		return "Debug"
	case "release":
		return "Release"
	}
	return ""
}

// OutputDir returns the host pipeline's designated output directory, or
// "" when OUT_DIR is unset.
func OutputDir() string {
	return os.Getenv("OUT_DIR")
}
