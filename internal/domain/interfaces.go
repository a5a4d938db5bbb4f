package domain

// AuthProvider produces the identity used to fill auth argument placeholders.
type AuthProvider interface {
	CurrentIdentity() (Identity, error)
}

// ProfileStore is the profile persistence seam. The core only reads.
type ProfileStore interface {
	Get(name string) (*Profile, error)
	List() ([]*Profile, error)
}

// LogSink receives game process output line by line.
type LogSink interface {
	Append(line string, level string)
}
