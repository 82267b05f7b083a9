package capn

// libraryVersion is the package's own version string, independent of
// any particular protocol revision Apple happens to be running.
const libraryVersion = "1.0.0"

// Version returns the library's version string.
func Version() string { return libraryVersion }
