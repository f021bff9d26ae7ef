package domain

// FilingStatus is the classified result of one submission attempt.
type FilingStatus string

const (
	FilingAccepted       FilingStatus = "accepted"
	FilingRejected       FilingStatus = "rejected"
	FilingTransportError FilingStatus = "transport_error"
	FilingUnrecognized   FilingStatus = "unrecognized"
)

// Valid reports whether s is one of the known statuses.
func (s FilingStatus) Valid() bool {
	switch s {
	case FilingAccepted, FilingRejected, FilingTransportError, FilingUnrecognized:
		return true
	}
	return false
}

// ArtifactProvider selects where debug artifacts are written.
type ArtifactProvider string

const (
	ArtifactsNone  ArtifactProvider = "none"
	ArtifactsLocal ArtifactProvider = "local"
	ArtifactsS3    ArtifactProvider = "s3"
)
